package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/swasthlink/health-api/pkg/errors"
)

// Deriver maps a national-ID-like secret to a stable patient UID. The same
// secret always derives the same uid, and the uid cannot be reversed without
// the server key.
type Deriver interface {
	Derive(aadharNumber string) (string, error)
	Verify(aadharNumber, uid string) bool
}

type Service struct {
	key []byte
}

func NewService(hmacKey string) *Service {
	return &Service{key: []byte(hmacKey)}
}

// Derive returns the 64-character hex HMAC-SHA256 of the normalized 12-digit
// Aadhar number.
func (s *Service) Derive(aadharNumber string) (string, error) {
	clean, ok := normalize(aadharNumber)
	if !ok {
		return "", apperrors.InvalidIdentityFormat(fmt.Errorf("expected 12 digits"))
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(clean))
	uid := hex.EncodeToString(mac.Sum(nil))

	log.Debug().Str("uid_prefix", uid[:8]).Msg("derived patient uid")
	return uid, nil
}

// Verify re-derives and compares in constant time. It never compares the
// secret itself; a malformed secret verifies false.
func (s *Service) Verify(aadharNumber, uid string) bool {
	derived, err := s.Derive(aadharNumber)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(derived), []byte(uid))
}

// normalize strips spaces and dashes and requires exactly 12 digits.
func normalize(aadharNumber string) (string, bool) {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(aadharNumber)
	if len(clean) != 12 {
		return "", false
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return clean, true
}
