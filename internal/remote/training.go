package remote

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// TrainingClient manages the restaurant's training files. The engine consumes
// these endpoints for their side effects only; payloads are not interpreted
// beyond success or failure.
type TrainingClient struct {
	*Client
}

func (c TrainingClient) ListFiles(ctx context.Context) ([]TrainingFile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/training/files", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Files []TrainingFile `json:"files"`
	}
	if err := c.doJSON(req, &out); err != nil {
		return nil, errors.Wrap(err, "list training files")
	}
	return out.Files, nil
}

// Upload sends one training file as multipart form data.
func (c TrainingClient) Upload(ctx context.Context, filename string, content []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/training/upload"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return errors.Wrap(c.doJSON(req, nil), "upload training file")
}

func (c TrainingClient) Delete(ctx context.Context, fileID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/training/files/"+fileID, nil)
	if err != nil {
		return err
	}
	return errors.Wrap(c.doJSON(req, nil), "delete training file")
}

// Preview fetches the extracted text preview for a training file.
func (c TrainingClient) Preview(ctx context.Context, fileID string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/training/files/"+fileID+"/preview", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Preview string `json:"preview"`
	}
	if err := c.doJSON(req, &out); err != nil {
		return "", errors.Wrap(err, "preview training file")
	}
	return out.Preview, nil
}
