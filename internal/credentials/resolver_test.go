package credentials

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exchangeCall struct {
	base        aws.Credentials
	roleARN     string
	sessionName string
	region      string
}

// stubExchanger substitutes the secure-token exchange in tests.
type stubExchanger struct {
	creds aws.Credentials
	err   error
	calls []exchangeCall
}

func (s *stubExchanger) Exchange(_ context.Context, base aws.Credentials, roleARN, sessionName, region string) (aws.Credentials, error) {
	s.calls = append(s.calls, exchangeCall{base: base, roleARN: roleARN, sessionName: sessionName, region: region})
	if s.err != nil {
		return aws.Credentials{}, s.err
	}
	return s.creds, nil
}

var tempCreds = aws.Credentials{
	AccessKeyID:     "ASIATEMPKEY",
	SecretAccessKey: "tempsecret",
	SessionToken:    "temptoken",
	CanExpire:       true,
}

func TestResolver_Resolve_Precedence(t *testing.T) {
	profiles := map[string]Profile{
		"default": {Name: "default", AccessKeyID: "AKIDPROFILE", SecretAccessKey: "profilesecret"},
	}

	tests := []struct {
		name      string
		resolver  Resolver
		wantKey   string
		wantToken string
	}{
		{
			name: "CLI static keys outrank everything",
			resolver: Resolver{
				Env:      Environment{AccessKeyID: "AKIDENV", SecretAccessKey: "envsecret"},
				Profiles: profiles,
				Overrides: Overrides{
					AccessKeyID:     "AKIDFLAG",
					SecretAccessKey: "flagsecret",
					SessionToken:    "flagtoken",
				},
			},
			wantKey:   "AKIDFLAG",
			wantToken: "flagtoken",
		},
		{
			name: "env static keys outrank a named profile",
			resolver: Resolver{
				Env: Environment{
					AccessKeyID:     "AKIDENV",
					SecretAccessKey: "envsecret",
					SessionToken:    "envtoken",
					Profile:         "default",
				},
				Profiles: profiles,
			},
			wantKey:   "AKIDENV",
			wantToken: "envtoken",
		},
		{
			name: "incomplete env pair falls through to the profile",
			resolver: Resolver{
				Env:      Environment{AccessKeyID: "AKIDENV"},
				Profiles: profiles,
			},
			wantKey: "AKIDPROFILE",
		},
		{
			name: "default profile is used when nothing else is specified",
			resolver: Resolver{
				Profiles: profiles,
			},
			wantKey: "AKIDPROFILE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := tt.resolver.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, creds.AccessKeyID)
			assert.Equal(t, tt.wantToken, creds.SessionToken)
		})
	}
}

func TestResolver_Resolve_NoCredentials(t *testing.T) {
	resolver := Resolver{}
	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestResolver_Resolve_ProfileNotFound(t *testing.T) {
	resolver := Resolver{
		Profiles:  map[string]Profile{"default": {Name: "default", AccessKeyID: "a", SecretAccessKey: "b"}},
		Overrides: Overrides{Profile: "missing"},
	}
	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestResolver_Resolve_RoleChain(t *testing.T) {
	exchanger := &stubExchanger{creds: tempCreds}
	resolver := Resolver{
		Profiles: map[string]Profile{
			"admin": {
				Name:          "admin",
				RoleARN:       "arn:aws:iam::123456789012:role/admin",
				SourceProfile: "base",
			},
			"base": {
				Name:            "base",
				Region:          "eu-central-1",
				AccessKeyID:     "AKIDBASE",
				SecretAccessKey: "basesecret",
			},
		},
		Overrides: Overrides{Profile: "admin"},
		Exchanger: exchanger,
	}

	creds, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tempCreds, creds)

	require.Len(t, exchanger.calls, 1)
	call := exchanger.calls[0]
	assert.Equal(t, "AKIDBASE", call.base.AccessKeyID)
	assert.Equal(t, "arn:aws:iam::123456789012:role/admin", call.roleARN)
	assert.True(t, strings.HasPrefix(call.sessionName, "awscurl-"))
}

func TestResolver_Resolve_SelfReferentialProfile(t *testing.T) {
	resolver := Resolver{
		Profiles: map[string]Profile{
			"loop": {
				Name:          "loop",
				RoleARN:       "arn:aws:iam::123456789012:role/loop",
				SourceProfile: "loop",
			},
		},
		Overrides: Overrides{Profile: "loop"},
		Exchanger: &stubExchanger{creds: tempCreds},
	}

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicRoleChain)
}

func TestResolver_Resolve_LongerCycle(t *testing.T) {
	resolver := Resolver{
		Profiles: map[string]Profile{
			"a": {Name: "a", RoleARN: "arn:aws:iam::1:role/a", SourceProfile: "b"},
			"b": {Name: "b", RoleARN: "arn:aws:iam::1:role/b", SourceProfile: "c"},
			"c": {Name: "c", RoleARN: "arn:aws:iam::1:role/c", SourceProfile: "a"},
		},
		Overrides: Overrides{Profile: "a"},
		Exchanger: &stubExchanger{creds: tempCreds},
	}

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicRoleChain)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
}

func TestResolver_Resolve_AssumeRoleFailure(t *testing.T) {
	resolver := Resolver{
		Profiles: map[string]Profile{
			"admin": {Name: "admin", RoleARN: "arn:aws:iam::1:role/admin", SourceProfile: "base"},
			"base":  {Name: "base", AccessKeyID: "AKIDBASE", SecretAccessKey: "basesecret"},
		},
		Overrides: Overrides{Profile: "admin"},
		Exchanger: &stubExchanger{err: errors.New("AccessDenied")},
	}

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssumeRole)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestResolver_Resolve_RoleWithoutSourceProfile(t *testing.T) {
	resolver := Resolver{
		Profiles: map[string]Profile{
			"admin": {Name: "admin", RoleARN: "arn:aws:iam::1:role/admin"},
		},
		Overrides: Overrides{Profile: "admin"},
	}

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestResolver_Resolve_EmptyProfile(t *testing.T) {
	resolver := Resolver{
		Profiles:  map[string]Profile{"empty": {Name: "empty", Region: "us-east-1"}},
		Overrides: Overrides{Profile: "empty"},
	}

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestResolver_ResolveRegion(t *testing.T) {
	profiles := map[string]Profile{
		"dev": {Name: "dev", Region: "eu-west-1", AccessKeyID: "a", SecretAccessKey: "b"},
	}

	tests := []struct {
		name     string
		resolver Resolver
		want     string
		wantErr  error
	}{
		{
			name: "CLI flag wins",
			resolver: Resolver{
				Env:       Environment{Region: "us-west-2"},
				Profiles:  profiles,
				Overrides: Overrides{Profile: "dev", Region: "ap-northeast-1"},
			},
			want: "ap-northeast-1",
		},
		{
			name: "profile region beats environment",
			resolver: Resolver{
				Env:       Environment{Region: "us-west-2"},
				Profiles:  profiles,
				Overrides: Overrides{Profile: "dev"},
			},
			want: "eu-west-1",
		},
		{
			name: "AWS_REGION beats AWS_DEFAULT_REGION",
			resolver: Resolver{
				Env: Environment{Region: "us-west-2", DefaultRegion: "us-east-2"},
			},
			want: "us-west-2",
		},
		{
			name: "AWS_DEFAULT_REGION as last resort",
			resolver: Resolver{
				Env: Environment{DefaultRegion: "us-east-2"},
			},
			want: "us-east-2",
		},
		{
			name:     "nothing resolves",
			resolver: Resolver{},
			wantErr:  ErrMissingRegion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, err := tt.resolver.ResolveRegion()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, region)
		})
	}
}
