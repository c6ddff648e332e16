package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// OrderClient talks to the order-placement and order-listing endpoints.
type OrderClient struct {
	*Client
}

type placementResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Place submits the order. On success it returns the server's confirmation
// message; a non-2xx status becomes a *PlacementError carrying any
// server-supplied error text.
func (c OrderClient) Place(ctx context.Context, p Placement) (string, error) {
	body, err := jsonBody(p)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/orders/create", body)
	if err != nil {
		return "", err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "place order")
	}
	defer resp.Body.Close()

	var decoded placementResponse
	// Decode leniently; a failure still needs the status-derived error below.
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &PlacementError{StatusCode: resp.StatusCode, Message: decoded.Error}
	}
	return decoded.Message, nil
}

// List fetches order records for analytics. The listing may arrive as a bare
// array, or wrapped as {"orders": [...]} or {"data": [...]}.
func (c OrderClient) List(ctx context.Context) ([]OrderRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/orders/list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("list orders: status %d%s", resp.StatusCode, serverError(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return decodeOrderListing(raw)
}

func decodeOrderListing(raw []byte) ([]OrderRecord, error) {
	var records []OrderRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Orders []OrderRecord `json:"orders"`
		Data   []OrderRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Wrap(err, "decode order listing")
	}
	if wrapped.Orders != nil {
		return wrapped.Orders, nil
	}
	return wrapped.Data, nil
}

// UpdateStatus moves an order through the kitchen workflow
// (pending/confirmed/in_progress/completed/cancelled).
func (c OrderClient) UpdateStatus(ctx context.Context, orderID, status string) error {
	body, err := jsonBody(map[string]string{"status": status})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/orders/"+orderID+"/status", body)
	if err != nil {
		return err
	}
	return errors.Wrap(c.doJSON(req, nil), "update order status")
}
