package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// Grant is what a download token authorises.
type Grant struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// Signer issues and verifies HMAC-SHA256 download tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a signer. A non-positive ttl defaults to one day.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL reports how long issued tokens stay valid.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token granting access to path on behalf of jobID.
func (s *Signer) Sign(jobID, path string) (string, Grant, error) {
	if jobID == "" || path == "" {
		return "", Grant{}, fmt.Errorf("job id and path required")
	}
	if len(s.secret) == 0 {
		return "", Grant{}, fmt.Errorf("signing secret missing")
	}
	grant := Grant{JobID: jobID, Path: path, ExpiresAt: s.now().Add(s.ttl).UTC().Truncate(time.Second)}
	payload := strings.Join([]string{jobID, strconv.FormatInt(grant.ExpiresAt.Unix(), 10), path}, "\n")
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + s.mac(encoded), grant, nil
}

// Verify checks the signature and expiry of token.
func (s *Signer) Verify(token string) (Grant, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return Grant{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(encoded))) {
		return Grant{}, ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Grant{}, ErrInvalidToken
	}
	parts := strings.SplitN(string(raw), "\n", 3)
	if len(parts) != 3 {
		return Grant{}, ErrInvalidToken
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Grant{}, ErrInvalidToken
	}
	grant := Grant{JobID: parts[0], Path: parts[2], ExpiresAt: time.Unix(exp, 0).UTC()}
	if s.now().After(grant.ExpiresAt) {
		return grant, ErrTokenExpired
	}
	return grant, nil
}

func (s *Signer) mac(encoded string) string {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
