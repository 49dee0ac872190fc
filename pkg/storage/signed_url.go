package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
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

// SignedURLSigner creates and validates signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a token binding the report id to its stored name until expiry.
func (s *SignedURLSigner) Generate(id, name string) (string, time.Time, error) {
	if id == "" || name == "" {
		return "", time.Time{}, fmt.Errorf("id and name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(name))
	token := strings.Join([]string{id, ts, encodedName, s.sign(id, ts, encodedName)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the report id and stored name.
func (s *SignedURLSigner) Parse(token string) (id, name string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrInvalidToken
	}
	id, ts, encodedName, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(id, ts, encodedName)), []byte(signature)) {
		return "", "", time.Time{}, ErrInvalidToken
	}
	rawName, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}
	expiresAt = time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return id, string(rawName), expiresAt, nil
}

func (s *SignedURLSigner) sign(id, ts, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(id + "|" + ts + "|" + encodedName))
	return hex.EncodeToString(mac.Sum(nil))
}
