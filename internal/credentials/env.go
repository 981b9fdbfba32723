package credentials

import (
	"os"
	"path/filepath"
)

// Environment is a snapshot of the AWS-related process environment.
// It is captured once at the start of resolution and passed down as a
// plain value, so the resolver never re-reads ambient state mid-flight.
type Environment struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	DefaultRegion   string
	Profile         string
	ConfigFile      string
}

// CaptureEnvironment reads the AWS environment variables the tool honors.
// No validation happens here; whatever subset is present is recorded.
func CaptureEnvironment() Environment {
	return Environment{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Region:          os.Getenv("AWS_REGION"),
		DefaultRegion:   os.Getenv("AWS_DEFAULT_REGION"),
		Profile:         os.Getenv("AWS_PROFILE"),
		ConfigFile:      os.Getenv("AWS_CONFIG_FILE"),
	}
}

// ProfilePath returns the shared config file location, honoring
// AWS_CONFIG_FILE and defaulting to ~/.aws/config.
func (e Environment) ProfilePath() string {
	if e.ConfigFile != "" {
		return e.ConfigFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws", "config")
}
