package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mindfoldco/mindfold/pkg/storage"
)

// Doer issues HTTP requests. *http.Client satisfies it; tests substitute
// an in-process transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// doRequest is the single transport helper every cloud call goes through.
// It injects the bearer header when a token is held and sets the given
// content type; multipart callers pass their boundary-bearing value and
// everything else passes "application/json" or "". Non-2xx responses are
// converted into an error carrying the server's error field when present,
// else the status line. 404 becomes storage.ErrNotFound.
func (a *Adapter) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	url := strings.TrimRight(a.baseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}

	if token, _ := a.session(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending %s request: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, storage.ErrNotFound{Path: path}
		}

		var errResp errorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s", errResp.Error)
		}

		return nil, fmt.Errorf("request failed: %s", resp.Status)
	}

	return data, nil
}

// getJSON issues a GET and decodes the response into out.
func (a *Adapter) getJSON(ctx context.Context, path string, out any) error {
	data, err := a.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// sendJSON issues a request with a JSON body, decoding into out when non-nil.
func (a *Adapter) sendJSON(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	data, err := a.doRequest(ctx, method, path, strings.NewReader(string(payload)), "application/json")
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
