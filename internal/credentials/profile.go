package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Profile is one section of the shared config file: a named bundle of
// region, role, and static key configuration.
type Profile struct {
	Name            string
	Region          string
	RoleARN         string
	SourceProfile   string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// HasStaticKeys reports whether the profile carries a complete static key
// pair. Both halves must be present for the pair to count.
func (p Profile) HasStaticKeys() bool {
	return p.AccessKeyID != "" && p.SecretAccessKey != ""
}

// LoadProfiles parses an INI-style shared config file into a map keyed by
// profile name. Sections are named [profile NAME] or [default]; sections
// of other shapes (e.g. sso-session blocks) and unknown keys are ignored.
// A missing file is not an error and yields an empty map.
func LoadProfiles(path string) (map[string]Profile, error) {
	profiles := make(map[string]Profile)
	if path == "" {
		return profiles, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return profiles, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	for _, section := range file.Sections() {
		raw := section.Name()
		var name string
		switch {
		case raw == ini.DefaultSection:
			// ini's implicit top-level section, not a profile
			continue
		case raw == "default":
			name = "default"
		case raw == "profile" || strings.HasPrefix(raw, "profile "):
			name = strings.TrimSpace(strings.TrimPrefix(raw, "profile"))
			if name == "" {
				return nil, fmt.Errorf("%w: section [%s] has an empty profile name", ErrParse, raw)
			}
		default:
			continue
		}

		profiles[name] = Profile{
			Name:            name,
			Region:          section.Key("region").String(),
			RoleARN:         section.Key("role_arn").String(),
			SourceProfile:   section.Key("source_profile").String(),
			AccessKeyID:     section.Key("aws_access_key_id").String(),
			SecretAccessKey: section.Key("aws_secret_access_key").String(),
			SessionToken:    section.Key("aws_session_token").String(),
		}
	}
	return profiles, nil
}
