package transport

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"
)

// Dispatcher performs the network round trip for a signed request.
type Dispatcher struct {
	// HTTPClient makes the actual HTTP requests. Nil falls back to a
	// client with a 30 second timeout.
	HTTPClient *http.Client

	// Logger receives verbose request/response traces on stderr.
	Logger *log.Logger

	// Verbose enables the traces.
	Verbose bool
}

// Do sends the request and returns the raw response body. A remote 4xx or
// 5xx is part of a completed round trip, not a failure; only transport
// errors (DNS, TCP, TLS) are returned as errors.
func (d *Dispatcher) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	client := d.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	if d.Verbose && d.Logger != nil {
		d.Logger.Printf("> %s %s", req.Method, req.URL)
		for _, line := range headerLines(req.Header) {
			d.Logger.Printf("> %s", line)
		}
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if d.Verbose && d.Logger != nil {
		d.Logger.Printf("< %s", resp.Status)
		for _, line := range headerLines(resp.Header) {
			d.Logger.Printf("< %s", line)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// headerLines renders headers sorted by name so verbose output is stable.
func headerLines(h http.Header) []string {
	lines := make([]string, 0, len(h))
	for name, values := range h {
		for _, v := range values {
			lines = append(lines, name+": "+v)
		}
	}
	sort.Strings(lines)
	return lines
}
