package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
)

// BuildRequest assembles the unsigned HTTP request from the CLI inputs.
// The method defaults to GET, or POST when a body is given. Headers are
// parsed from "name: value" strings; repeating a name keeps every value
// in order so the signer can fold them.
func BuildRequest(rawURL, method, data string, headers []string) (*http.Request, []byte, error) {
	if method == "" {
		method = http.MethodGet
		if data != "" {
			method = http.MethodPost
		}
	}

	body := []byte(data)
	req, err := http.NewRequest(strings.ToUpper(method), rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}

	for _, raw := range headers {
		name, value, found := strings.Cut(raw, ":")
		if !found || strings.TrimSpace(name) == "" {
			return nil, nil, fmt.Errorf("invalid header %q: expected \"name: value\"", raw)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return req, body, nil
}
