// Package httpcap is the reference http.fetch capability: a plain
// net/http round trip, JSON-encoding a non-nil request body and
// JSON-decoding the response when possible.
package httpcap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	agent "github.com/tonioloewald/agent-99"
)

// New builds a FetchFunc backed by client. A nil client uses
// http.DefaultClient.
func New(client *http.Client) agent.FetchFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, url string, req agent.FetchRequest) (any, error) {
		method := req.Method
		if method == "" {
			method = http.MethodGet
		}

		var body io.Reader
		if req.Body != nil {
			encoded, err := json.Marshal(req.Body)
			if err != nil {
				return nil, fmt.Errorf("httpcap: encoding request body: %w", err)
			}
			body = bytes.NewReader(encoded)
		}

		httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		for k, v := range req.Headers {
			httpReq.Header.Set(k, v)
		}
		if body != nil && httpReq.Header.Get("Content-Type") == "" {
			httpReq.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("httpcap: %s returned status %d: %s", url, resp.StatusCode, raw)
		}
		if len(raw) == 0 {
			return nil, nil
		}

		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return string(raw), nil
		}
		return decoded, nil
	}
}
