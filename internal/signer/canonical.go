package signer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const timeFormat = "20060102T150405Z"
const dateFormat = "20060102"

// SigningContext pins the region, service, and UTC instant a signature is
// computed for. A fresh context is created per request at signing time.
type SigningContext struct {
	Region  string
	Service string
	Time    time.Time
}

// AmzDate returns the timestamp in the form the X-Amz-Date header carries.
func (c SigningContext) AmzDate() string { return c.Time.UTC().Format(timeFormat) }

// DateStamp returns the YYYYMMDD date used in the credential scope.
func (c SigningContext) DateStamp() string { return c.Time.UTC().Format(dateFormat) }

// CredentialScope returns the date/region/service/aws4_request string that
// binds a signature to its context.
func (c SigningContext) CredentialScope() string {
	return strings.Join([]string{c.DateStamp(), c.Region, c.Service, "aws4_request"}, "/")
}

// CanonicalRequest is the normalized form of an HTTP request used as SigV4
// signing input. Construction is a pure function of the request, so
// identical inputs always canonicalize to identical bytes.
type CanonicalRequest struct {
	Method        string
	Path          string
	Query         string
	Headers       string
	SignedHeaders string
	PayloadHash   string
}

// String assembles the canonical request wire form. The Headers block
// already ends with a newline, which produces the blank line the format
// requires before the signed-headers list.
func (r CanonicalRequest) String() string {
	return r.Method + "\n" + r.Path + "\n" + r.Query + "\n" +
		r.Headers + "\n" + r.SignedHeaders + "\n" + r.PayloadHash
}

// BuildCanonicalRequest normalizes req into the byte-exact form SigV4
// hashes. The request is not modified: every header that must be signed,
// including x-amz-date and x-amz-security-token, has to be on the request
// before this is called.
func BuildCanonicalRequest(req *http.Request, body []byte) CanonicalRequest {
	names := signedHeaderNames(req)
	return CanonicalRequest{
		Method:        req.Method,
		Path:          canonicalPath(req.URL),
		Query:         canonicalQuery(req.URL.RawQuery),
		Headers:       canonicalHeaders(req, names),
		SignedHeaders: strings.Join(names, ";"),
		PayloadHash:   HashPayload(body),
	}
}

// HashPayload returns the lowercase hex SHA-256 digest of the raw body
// bytes. An empty body hashes to the well-known empty-input digest.
func HashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// canonicalPath percent-encodes the request path per the RFC 3986
// unreserved rules, keeping slash separators literal. Dot segments are
// left as given; AWS servers expect the path encoded verbatim.
func canonicalPath(u *url.URL) string {
	path := u.Path
	if path == "" {
		path = "/"
	}
	return uriEncode(path, false)
}

type queryPair struct {
	key   string
	value string
}

// canonicalQuery splits the raw query on "&", re-encodes each key and
// value independently, and sorts pairs by encoded key then encoded value.
func canonicalQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	var pairs []queryPair
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		pairs = append(pairs, queryPair{
			key:   uriEncode(unescape(key), true),
			value: uriEncode(unescape(value), true),
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})
	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = p.key + "=" + p.value
	}
	return strings.Join(encoded, "&")
}

// canonicalHeaders emits one name:value line per signed header. Values are
// trimmed, internal whitespace runs collapse to a single space, and
// repeated headers join with a comma in original order. Whitespace inside
// quoted strings is not special-cased; values carrying RFC 7230 quoted
// strings with significant internal spacing will fold like any other.
func canonicalHeaders(req *http.Request, names []string) string {
	var b strings.Builder
	for _, name := range names {
		var value string
		if name == "host" {
			value = req.Host
			if value == "" {
				value = req.URL.Host
			}
			value = foldWhitespace(value)
		} else {
			values := req.Header.Values(name)
			folded := make([]string, len(values))
			for i, v := range values {
				folded[i] = foldWhitespace(v)
			}
			value = strings.Join(folded, ",")
		}
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(value)
		b.WriteString("\n")
	}
	return b.String()
}

// signedHeaderNames returns the sorted, lower-cased set of header names to
// sign: every header on the request plus host.
func signedHeaderNames(req *http.Request) []string {
	seen := map[string]bool{"host": true}
	names := []string{"host"}
	for name := range req.Header {
		lower := strings.ToLower(name)
		if !seen[lower] {
			seen[lower] = true
			names = append(names, lower)
		}
	}
	sort.Strings(names)
	return names
}

// foldWhitespace trims s and collapses internal runs of spaces and tabs to
// a single space.
func foldWhitespace(s string) string {
	var b strings.Builder
	inRun := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			inRun = true
			continue
		}
		if inRun && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inRun = false
		b.WriteByte(c)
	}
	return b.String()
}

// uriEncode percent-encodes s, leaving the RFC 3986 unreserved characters
// bare. Slashes stay literal when encodeSlash is false so path separators
// survive encoding.
func uriEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
