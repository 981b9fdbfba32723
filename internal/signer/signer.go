package signer

import (
	"context"
	"net/http"
)

// Signer signs HTTP requests with AWS credentials
type Signer interface {
	// SignRequest adds AWS signature headers to the request. The raw body
	// bytes are passed separately because their hash is part of the
	// signing input.
	SignRequest(ctx context.Context, req *http.Request, body []byte) error
}
