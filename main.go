package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/1hakusai1/awscurl/internal/config"
	"github.com/1hakusai1/awscurl/internal/credentials"
	"github.com/1hakusai1/awscurl/internal/signer"
	"github.com/1hakusai1/awscurl/internal/transport"
)

const (
	toolName       = "awscurl"
	toolVersion    = "v1.0.0"
	defaultService = "execute-api"
)

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	if err := newRootCommand(logger).Execute(); err != nil {
		logger.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(logger *log.Logger) *cobra.Command {
	cfg := &config.Config{}
	cmd := &cobra.Command{
		Use:           toolName + " <URL>",
		Short:         "curl-style HTTP client with AWS SigV4 request signing",
		Args:          cobra.ExactArgs(1),
		Version:       toolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.URL = args[0]
			return run(cmd.Context(), logger, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Data, "data", "d", "", "request body to send")
	flags.StringVarP(&cfg.Method, "request", "X", "", "HTTP method (default GET, or POST with --data)")
	flags.StringArrayVarP(&cfg.Headers, "header", "H", nil, "request header in 'name: value' form (repeatable)")
	flags.StringVar(&cfg.Service, "service", defaultService, "AWS service name used in the credential scope")
	flags.StringVar(&cfg.Region, "region", "", "AWS region (overrides profile and environment)")
	flags.StringVar(&cfg.Profile, "profile", "", "named profile from the shared config file")
	flags.StringVar(&cfg.AccessKey, "access-key", "", "static AWS access key id")
	flags.StringVar(&cfg.SecretKey, "secret-key", "", "static AWS secret access key")
	flags.StringVar(&cfg.SessionToken, "session-token", "", "session token for temporary credentials")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "trace resolution, signing, and the round trip on stderr")
	flags.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}

// run wires the single-shot pipeline: capture ambient configuration,
// resolve credentials, build and sign the request, dispatch, print.
func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	env := credentials.CaptureEnvironment()
	profiles, err := credentials.LoadProfiles(env.ProfilePath())
	if err != nil {
		return err
	}

	resolver := &credentials.Resolver{
		Env:      env,
		Profiles: profiles,
		Overrides: credentials.Overrides{
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			SessionToken:    cfg.SessionToken,
			Profile:         cfg.Profile,
			Region:          cfg.Region,
		},
		Exchanger: credentials.STSExchanger{},
	}

	creds, err := resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve AWS credentials: %w", err)
	}
	if cfg.Verbose {
		logger.Printf("credentials resolved (access key %s)", maskAccessKey(creds.AccessKeyID))
		if creds.SessionToken != "" {
			logger.Println("  session token present")
		}
	}

	region, err := resolver.ResolveRegion()
	if err != nil {
		return err
	}

	req, body, err := transport.BuildRequest(cfg.URL, cfg.Method, cfg.Data, cfg.Headers)
	if err != nil {
		return err
	}

	v4 := &signer.V4Signer{
		Credentials: creds,
		Region:      region,
		Service:     cfg.Service,
	}
	if err := v4.SignRequest(ctx, req, body); err != nil {
		return err
	}
	if cfg.Verbose {
		logger.Printf("signed %s %s (region %s, service %s)", req.Method, req.URL, region, cfg.Service)
	}

	dispatcher := &transport.Dispatcher{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     logger,
		Verbose:    cfg.Verbose,
	}
	respBody, err := dispatcher.Do(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(string(respBody))
	return nil
}

// maskAccessKey masks most of the access key for security logging
func maskAccessKey(accessKey string) string {
	if len(accessKey) <= 8 {
		return "****"
	}
	return accessKey[:4] + "****" + accessKey[len(accessKey)-4:]
}
