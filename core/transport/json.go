package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"inventory-reconciler/core/reconcile"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 32 << 20

var (
	// ErrUnexpectedStatusCode is wrapped for non-2xx responses that are not auth failures.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrInvalidResponse is wrapped when a body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response body")
)

// StatusError maps a non-2xx response onto the error taxonomy:
// 401 and 403 are authentication failures, everything else is a transport failure.
func StatusError(statusCode int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", reconcile.ErrAuthentication, statusCode, snippet)
	default:
		return fmt.Errorf("%w: %w: %d: %s", reconcile.ErrTransport, ErrUnexpectedStatusCode, statusCode, snippet)
	}
}

// GetJSON performs a GET request and decodes a JSON response into out.
// Network failures, non-2xx responses and undecodable bodies are all returned
// as errors classified by the reconcile error taxonomy.
func GetJSON(ctx context.Context, client *http.Client, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", reconcile.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %w", reconcile.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w: %w", reconcile.ErrTransport, ErrInvalidResponse, err)
	}

	return nil
}
