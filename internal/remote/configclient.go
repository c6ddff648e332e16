package remote

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// ConfigClient fetches the brand configuration.
type ConfigClient struct {
	*Client
}

func (c ConfigClient) Fetch(ctx context.Context) (*BrandConfig, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/config", nil)
	if err != nil {
		return nil, err
	}
	var cfg BrandConfig
	if err := c.doJSON(req, &cfg); err != nil {
		return nil, errors.Wrap(err, "fetch config")
	}
	return &cfg, nil
}
