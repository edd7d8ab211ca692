package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const lookupDigestLabel = "api-key-lookup:"

// APIKeySigner implements the machine credential scheme. The stored value is
// a signed token produced under the server key with the raw key embedded in
// it, so validity is verifiable and the raw value recoverable without ever
// persisting it in clear form. A separate deterministic HMAC digest of the
// raw key serves as the direct lookup column during authentication.
type APIKeySigner struct {
	secret []byte
}

// NewAPIKeySigner creates a signer keyed by the application secret
func NewAPIKeySigner(secretKeyBase string) *APIKeySigner {
	return &APIKeySigner{secret: []byte(secretKeyBase)}
}

// Generate produces a new raw API key together with its signed token and
// lookup digest. The raw key is handed to the caller exactly once; only the
// two digests are stored.
func (s *APIKeySigner) Generate() (raw, signed, lookup string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", fmt.Errorf("failed to generate api key: %w", err)
	}
	raw = hex.EncodeToString(buf)

	signed, err = s.Sign(raw)
	if err != nil {
		return "", "", "", err
	}
	return raw, signed, s.LookupDigest(raw), nil
}

// Sign wraps a raw key in a token signed under the server key
func (s *APIKeySigner) Sign(raw string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"key": raw})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign api key: %w", err)
	}
	return signed, nil
}

// Verify validates the signature of a stored token and recovers the raw key
// embedded in it.
func (s *APIKeySigner) Verify(signed string) (string, error) {
	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("invalid api key signature: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid api key token claims")
	}
	raw, ok := claims["key"].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("api key token missing embedded key")
	}
	return raw, nil
}

// LookupDigest computes the deterministic keyed digest of a raw key. Equal
// inputs always map to the same digest, which is what makes the indexed
// match possible before the owning tenant is known.
func (s *APIKeySigner) LookupDigest(raw string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(lookupDigestLabel))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
