package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
)

// Overrides carries the explicit CLI values that outrank ambient
// configuration during resolution.
type Overrides struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
	Region          string
}

// Resolver orders and combines credential sources into one effective
// credential set. All inputs are captured up front, so Resolve is a pure
// function of the struct's fields plus whatever the Exchanger does on the
// network.
type Resolver struct {
	Env       Environment
	Profiles  map[string]Profile
	Overrides Overrides
	Exchanger Exchanger
}

// Resolve applies the precedence chain, highest first: explicit static
// keys from flags, static keys from the environment, then a named
// profile. It fails with ErrNoCredentials when nothing resolves.
func (r *Resolver) Resolve(ctx context.Context) (aws.Credentials, error) {
	if r.Overrides.AccessKeyID != "" && r.Overrides.SecretAccessKey != "" {
		return aws.Credentials{
			AccessKeyID:     r.Overrides.AccessKeyID,
			SecretAccessKey: r.Overrides.SecretAccessKey,
			SessionToken:    r.Overrides.SessionToken,
		}, nil
	}
	if r.Env.AccessKeyID != "" && r.Env.SecretAccessKey != "" {
		return aws.Credentials{
			AccessKeyID:     r.Env.AccessKeyID,
			SecretAccessKey: r.Env.SecretAccessKey,
			SessionToken:    r.Env.SessionToken,
		}, nil
	}

	name := r.profileName()
	if name == "" {
		return aws.Credentials{}, ErrNoCredentials
	}
	return r.resolveProfile(ctx, name, nil)
}

// profileName picks the profile to resolve: the --profile flag, then
// AWS_PROFILE, then "default" when a profile file was loaded at all.
func (r *Resolver) profileName() string {
	if r.Overrides.Profile != "" {
		return r.Overrides.Profile
	}
	if r.Env.Profile != "" {
		return r.Env.Profile
	}
	if len(r.Profiles) > 0 {
		return "default"
	}
	return ""
}

// resolveProfile walks the source_profile chain. visiting holds the names
// already on the current resolution path; revisiting one turns an
// unterminated chain into ErrCyclicRoleChain instead of infinite
// recursion.
func (r *Resolver) resolveProfile(ctx context.Context, name string, visiting []string) (aws.Credentials, error) {
	for _, seen := range visiting {
		if seen == name {
			chain := strings.Join(append(visiting, name), " -> ")
			return aws.Credentials{}, fmt.Errorf("%w: %s", ErrCyclicRoleChain, chain)
		}
	}

	profile, ok := r.Profiles[name]
	if !ok {
		return aws.Credentials{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	if profile.RoleARN != "" {
		if profile.SourceProfile == "" {
			return aws.Credentials{}, fmt.Errorf(
				"%w: profile %q sets role_arn without source_profile", ErrParse, name)
		}
		base, err := r.resolveProfile(ctx, profile.SourceProfile, append(visiting, name))
		if err != nil {
			return aws.Credentials{}, err
		}
		creds, err := r.Exchanger.Exchange(ctx, base, profile.RoleARN, sessionName(), r.exchangeRegion(profile))
		if err != nil {
			return aws.Credentials{}, fmt.Errorf(
				"%w: role %s via profile %q: %v", ErrAssumeRole, profile.RoleARN, name, err)
		}
		return creds, nil
	}

	if profile.HasStaticKeys() {
		return aws.Credentials{
			AccessKeyID:     profile.AccessKeyID,
			SecretAccessKey: profile.SecretAccessKey,
			SessionToken:    profile.SessionToken,
		}, nil
	}

	return aws.Credentials{}, fmt.Errorf(
		"%w: profile %q carries neither static keys nor a role", ErrNoCredentials, name)
}

// ResolveRegion applies the region precedence: the --region flag, then the
// selected profile's region key, then AWS_REGION, then AWS_DEFAULT_REGION.
func (r *Resolver) ResolveRegion() (string, error) {
	if r.Overrides.Region != "" {
		return r.Overrides.Region, nil
	}
	if name := r.profileName(); name != "" {
		if profile, ok := r.Profiles[name]; ok && profile.Region != "" {
			return profile.Region, nil
		}
	}
	if r.Env.Region != "" {
		return r.Env.Region, nil
	}
	if r.Env.DefaultRegion != "" {
		return r.Env.DefaultRegion, nil
	}
	return "", ErrMissingRegion
}

// exchangeRegion picks the region for the token-exchange call itself. STS
// is reachable from any region, so a missing region only changes which
// endpoint answers.
func (r *Resolver) exchangeRegion(profile Profile) string {
	if r.Overrides.Region != "" {
		return r.Overrides.Region
	}
	if profile.Region != "" {
		return profile.Region
	}
	if r.Env.Region != "" {
		return r.Env.Region
	}
	if r.Env.DefaultRegion != "" {
		return r.Env.DefaultRegion
	}
	return "us-east-1"
}

func sessionName() string {
	return "awscurl-" + uuid.NewString()
}
