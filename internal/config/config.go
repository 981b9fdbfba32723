package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds one invocation's settings, bound from the CLI flags.
type Config struct {
	// URL is the target of the request
	URL string

	// Method is the HTTP method; empty means GET, or POST when Data is set
	Method string

	// Data is the raw request body
	Data string

	// Headers are the raw -H values in "name: value" form
	Headers []string

	// Service is the AWS service name for the credential scope
	Service string

	// Region is the AWS region override; empty defers to profile and env
	Region string

	// Profile is the named profile from the shared config file
	Profile string

	// AccessKey, SecretKey, and SessionToken are explicit static
	// credentials that outrank every other source
	AccessKey    string
	SecretKey    string
	SessionToken string

	// Verbose enables request/response tracing on stderr
	Verbose bool

	// Timeout bounds the whole round trip
	Timeout time.Duration
}

// Validate checks the fields the core cannot proceed without. Region is
// deliberately absent: it resolves later through the profile and
// environment chain.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("target URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid target URL %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target URL must use http or https, got %q", c.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("target URL %q has no host", c.URL)
	}
	if c.Service == "" {
		return fmt.Errorf("service name is required")
	}
	return nil
}
