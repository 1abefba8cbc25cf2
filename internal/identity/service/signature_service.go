package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"net/url"
	"strconv"
	"time"

	"github.com/hdtickets/admission/internal/identity/domain"
	"github.com/hdtickets/admission/internal/request"
)

// Headers carrying the signature material.
const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
)

// signatureService implements SignatureService using HMAC over a canonical
// request representation.
type signatureService struct {
	newHash   func() hash.Hash
	tolerance time.Duration
}

// Verify checks the X-Signature header against the shared secret. The
// X-Timestamp header must be a unix timestamp within the configured tolerance
// of now; this bounds the replay window of a captured signature.
func (s *signatureService) Verify(req *request.Request, secret string, now time.Time) error {
	timestampHeader := req.Header(HeaderTimestamp)
	if timestampHeader == "" {
		return domain.ErrSignatureInvalid
	}

	unix, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return domain.ErrSignatureInvalid
	}

	timestamp := time.Unix(unix, 0)
	skew := now.Sub(timestamp)
	if skew < 0 {
		skew = -skew
	}
	if skew > s.tolerance {
		return domain.ErrTimestampSkewed
	}

	provided := req.Header(HeaderSignature)
	if provided == "" {
		return domain.ErrSignatureInvalid
	}

	expected := s.Sign(req, secret, timestamp)
	if !hmac.Equal([]byte(provided), []byte(expected)) {
		return domain.ErrSignatureInvalid
	}

	return nil
}

// Sign computes the hex-encoded HMAC over the canonical request payload:
// method, path, sorted query string, body, and unix timestamp joined by
// newlines.
func (s *signatureService) Sign(req *request.Request, secret string, timestamp time.Time) string {
	payload := req.Method + "\n" +
		req.Path + "\n" +
		canonicalQuery(req.Query) + "\n" +
		req.Body + "\n" +
		strconv.FormatInt(timestamp.Unix(), 10)

	mac := hmac.New(s.newHash, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery re-encodes the query string with parameters sorted by key so
// that client and server agree on the signed form regardless of ordering.
func canonicalQuery(query string) string {
	if query == "" {
		return ""
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return query
	}
	return values.Encode()
}

// NewSignatureService creates a SignatureService using the named HMAC
// algorithm ("sha256" or "sha512") and timestamp tolerance.
func NewSignatureService(algorithm string, tolerance time.Duration) SignatureService {
	newHash := sha256.New
	if algorithm == "sha512" {
		newHash = sha512.New
	}
	return &signatureService{
		newHash:   newHash,
		tolerance: tolerance,
	}
}
