package remote

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// ChatClient talks to the remote chat endpoint.
type ChatClient struct {
	*Client
}

type chatRequest struct {
	Message string           `json:"message"`
	History []HistoryMessage `json:"history,omitempty"`
}

type chatResponse struct {
	Response   string     `json:"response"`
	OrderReady bool       `json:"order_ready,omitempty"`
	OrderItems []LineItem `json:"order_items,omitempty"`
	OrderTotal float64    `json:"order_total,omitempty"`
}

// Send posts the utterance with conversation context and decides the reply
// shape once: an order-ready flag with a non-empty item list becomes
// OrderReady, everything else PlainReply.
func (c ChatClient) Send(ctx context.Context, message string, history []HistoryMessage) (Reply, error) {
	body, err := jsonBody(chatRequest{Message: message, History: history})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat", body)
	if err != nil {
		return nil, err
	}

	var decoded chatResponse
	if err := c.doJSON(req, &decoded); err != nil {
		return nil, errors.Wrap(err, "chat")
	}

	if decoded.OrderReady && len(decoded.OrderItems) > 0 {
		total := decoded.OrderTotal
		if total == 0 {
			total = SumTotal(decoded.OrderItems)
		}
		return OrderReady{
			Items:   decoded.OrderItems,
			Total:   total,
			Message: decoded.Response,
		}, nil
	}
	return PlainReply{Text: decoded.Response}, nil
}
