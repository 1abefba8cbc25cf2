package service

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hdtickets/admission/internal/identity/domain"
	"github.com/hdtickets/admission/internal/request"
)

func signedRequest(svc SignatureService, secret string, timestamp time.Time) *request.Request {
	req := &request.Request{
		Method:  "POST",
		Path:    "/v1/tickets/purchase",
		Query:   "seat=12&event=e-1",
		Body:    `{"ticket_id":"t-1"}`,
		Headers: map[string]string{},
	}
	req.Headers["X-Timestamp"] = strconv.FormatInt(timestamp.Unix(), 10)
	req.Headers["X-Signature"] = svc.Sign(req, secret, timestamp)
	return req
}

func TestSignatureService_Verify(t *testing.T) {
	svc := NewSignatureService("sha256", 5*time.Minute)
	now := time.Now().UTC()
	secret := "shared-secret"

	t.Run("Success_ValidSignature", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		assert.NoError(t, svc.Verify(req, secret, now))
	})

	t.Run("Success_QueryOrderIndependent", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		// Re-order the query parameters; canonicalization must absorb it.
		req.Query = "event=e-1&seat=12"
		assert.NoError(t, svc.Verify(req, secret, now))
	})

	t.Run("Success_WithinTolerance", func(t *testing.T) {
		req := signedRequest(svc, secret, now.Add(-4*time.Minute))
		assert.NoError(t, svc.Verify(req, secret, now))
	})

	t.Run("Error_TimestampTooOld", func(t *testing.T) {
		req := signedRequest(svc, secret, now.Add(-6*time.Minute))
		assert.ErrorIs(t, svc.Verify(req, secret, now), domain.ErrTimestampSkewed)
	})

	t.Run("Error_TimestampInFuture", func(t *testing.T) {
		req := signedRequest(svc, secret, now.Add(6*time.Minute))
		assert.ErrorIs(t, svc.Verify(req, secret, now), domain.ErrTimestampSkewed)
	})

	t.Run("Error_MissingTimestamp", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		delete(req.Headers, "X-Timestamp")
		assert.ErrorIs(t, svc.Verify(req, secret, now), domain.ErrSignatureInvalid)
	})

	t.Run("Error_MissingSignature", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		delete(req.Headers, "X-Signature")
		assert.ErrorIs(t, svc.Verify(req, secret, now), domain.ErrSignatureInvalid)
	})

	t.Run("Error_TamperedBody", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		req.Body = `{"ticket_id":"t-2"}`
		assert.ErrorIs(t, svc.Verify(req, secret, now), domain.ErrSignatureInvalid)
	})

	t.Run("Error_TamperedPath", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		req.Path = "/v1/tickets/refund"
		assert.ErrorIs(t, svc.Verify(req, secret, now), domain.ErrSignatureInvalid)
	})

	t.Run("Error_WrongSecret", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		assert.ErrorIs(t, svc.Verify(req, "other-secret", now), domain.ErrSignatureInvalid)
	})

	t.Run("Error_ReplayedSignatureOutsideWindow", func(t *testing.T) {
		req := signedRequest(svc, secret, now)
		assert.ErrorIs(t, svc.Verify(req, secret, now.Add(10*time.Minute)), domain.ErrTimestampSkewed)
	})
}

func TestSignatureService_SHA512(t *testing.T) {
	svc256 := NewSignatureService("sha256", 5*time.Minute)
	svc512 := NewSignatureService("sha512", 5*time.Minute)
	now := time.Now().UTC()

	req := signedRequest(svc512, "secret", now)
	assert.NoError(t, svc512.Verify(req, "secret", now))
	assert.ErrorIs(t, svc256.Verify(req, "secret", now), domain.ErrSignatureInvalid)
}
