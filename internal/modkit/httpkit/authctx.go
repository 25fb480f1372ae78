package httpkit

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	perrs "predictkit/internal/platform/errors"
	"predictkit/internal/platform/net/middleware"
)

// Bearer returns the raw bearer token from the Authorization header
func Bearer(r *http.Request) (string, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}

// StaticTokens accepts a fixed set of API tokens. The caller id is a short digest of
// the token so logs never carry the secret. Blank entries are ignored
type StaticTokens struct {
	sums [][sha256.Size]byte
}

// NewStaticTokens returns nil when no usable token is given, which leaves routes open
func NewStaticTokens(tokens []string) *StaticTokens {
	var st StaticTokens
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			st.sums = append(st.sums, sha256.Sum256([]byte(t)))
		}
	}
	if len(st.sums) == 0 {
		return nil
	}
	return &st
}

// Parse implements middleware.AuthPort
func (s *StaticTokens) Parse(r *http.Request) (string, error) {
	raw, err := Bearer(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(raw))
	ok := 0
	for i := range s.sums {
		ok |= subtle.ConstantTimeCompare(sum[:], s.sums[i][:])
	}
	if ok != 1 {
		return "", perrs.Unauthorizedf("invalid api token")
	}
	return "token:" + hex.EncodeToString(sum[:4]), nil
}

var _ middleware.AuthPort = (*StaticTokens)(nil)
