package http

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/hdtickets/admission/internal/admission"
	"github.com/hdtickets/admission/internal/httputil"
	"github.com/hdtickets/admission/internal/request"
)

// maxInspectedBody caps how much request body the admission pipeline reads
// for fingerprinting and signature verification.
const maxInspectedBody = 1 << 20

// AdmissionMiddleware runs the admission pipeline for the given logical
// endpoint before the handler. On success it stores the principal and the
// full admission result in the request context, sets the rate limit
// headers, and releases the request's concurrency slot when the handler
// returns. On rejection it writes the mapped error response and aborts.
func AdmissionMiddleware(pipeline admission.Pipeline, endpoint string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := peekBody(c)
		if err != nil {
			httputil.HandleBadRequestGin(c, err, logger)
			c.Abort()
			return
		}

		req := request.FromHTTP(c.Request, body, c.ClientIP())

		result, err := pipeline.Admit(c.Request.Context(), req, endpoint)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithAdmission(c.Request.Context(), result)
		if result.Principal != nil {
			ctx = WithPrincipal(ctx, result.Principal)
		}
		c.Request = c.Request.WithContext(ctx)

		if result.Decision != nil {
			httputil.SetRateLimitHeaders(c, result.Decision)
		}

		c.Next()

		if result.Release != nil {
			result.Release(c.Request.Context())
		}
	}
}

// peekBody reads the request body for pipeline inspection and restores it so
// the handler can bind it again.
func peekBody(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return "", nil
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInspectedBody))
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	return string(raw), nil
}
