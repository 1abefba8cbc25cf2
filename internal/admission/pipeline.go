// Package admission orchestrates the per-request security checks: identity
// resolution, device risk, permission resolution, and rate limiting, in that
// order, short-circuiting on the first rejection.
package admission

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/audit"
	deviceDomain "github.com/hdtickets/admission/internal/device/domain"
	deviceUsecase "github.com/hdtickets/admission/internal/device/usecase"
	apperrors "github.com/hdtickets/admission/internal/errors"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	identityUsecase "github.com/hdtickets/admission/internal/identity/usecase"
	ratelimitDomain "github.com/hdtickets/admission/internal/ratelimit/domain"
	ratelimitUsecase "github.com/hdtickets/admission/internal/ratelimit/usecase"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
	rbacUsecase "github.com/hdtickets/admission/internal/rbac/usecase"
	"github.com/hdtickets/admission/internal/request"
)

const (
	headerAuthorization = "Authorization"
	headerAPIKey        = "X-Api-Key"

	bearerScheme = "Bearer "
)

// Result carries everything the caller needs after a successful admission.
type Result struct {
	// Principal is the resolved identity, nil for anonymous requests.
	Principal *identityDomain.Principal
	// Trust is the device trust evaluation, nil for anonymous requests or
	// when the device upsert failed.
	Trust *deviceDomain.TrustResult
	// Risk is the request risk assessment.
	Risk *deviceDomain.RiskAssessment
	// Decision is the rate limit outcome, used for response headers.
	Decision *ratelimitDomain.Decision
	// Release returns the concurrency slot held by this request, when the
	// endpoint has one. Callers must invoke it exactly once when the
	// request finishes.
	Release ratelimitUsecase.ReleaseFunc
}

// Pipeline admits or rejects requests.
type Pipeline interface {
	// Admit runs every admission stage for the request against the
	// endpoint's policy. The returned error identifies the rejecting stage;
	// stages after the first rejection never run.
	Admit(ctx context.Context, req *request.Request, endpoint string) (*Result, error)
}

// pipeline implements Pipeline.
type pipeline struct {
	credentials   identityUsecase.CredentialUseCase
	tokens        identityUsecase.TokenUseCase
	trust         deviceUsecase.TrustUseCase
	resolver      rbacUsecase.ResolverUseCase
	limiter       ratelimitUsecase.LimiterUseCase
	policies      map[string]EndpointPolicy
	auditRecorder audit.Recorder
}

// Admit runs the admission stages in order: identity, device risk,
// permission, rate limit. Effects that describe a successful request (the
// device trust upsert) are applied only after every stage has passed, so a
// rejected request leaves no trace beyond its counters and the audit record.
//
// Security Notes:
// - Every denial is audited with the endpoint, source IP, stage, and
//   resolved user when one exists.
// - Critical request risk denies even a fully authenticated, authorized
//   principal.
func (p *pipeline) Admit(ctx context.Context, req *request.Request, endpoint string) (*Result, error) {
	policy := p.policies[endpoint]

	principal, err := p.resolvePrincipal(ctx, req)
	if err != nil {
		return nil, p.deny(ctx, req, endpoint, nil, "identity", err)
	}
	if principal == nil && !policy.AllowAnonymous {
		err := apperrors.Wrap(identityDomain.ErrMalformedCredential, "endpoint requires credentials")
		return nil, p.deny(ctx, req, endpoint, nil, "identity", err)
	}

	var userID uuid.UUID
	if principal != nil {
		userID = principal.UserID
	}

	risk, err := p.trust.AssessRisk(ctx, userID, req)
	if err != nil {
		return nil, p.deny(ctx, req, endpoint, principal, "risk", err)
	}
	if risk.Critical() {
		err := apperrors.Wrapf(deviceDomain.ErrDeviceUntrusted, "risk score %d (%s)", risk.Score, strings.Join(risk.Signals, ","))
		return nil, p.deny(ctx, req, endpoint, principal, "risk", err)
	}

	if policy.Permission != "" {
		if principal == nil {
			err := apperrors.Wrapf(rbacDomain.ErrMissingPermission, "anonymous request to endpoint requiring %s", policy.Permission)
			return nil, p.deny(ctx, req, endpoint, nil, "permission", err)
		}
		if err := p.resolver.Require(ctx, principal, policy.Permission, nil); err != nil {
			return nil, p.deny(ctx, req, endpoint, principal, "permission", err)
		}
	}

	input := ratelimitUsecase.CheckInput{IP: req.IP, UserID: userID}
	decision, release, err := p.limiter.Check(ctx, input, endpoint)
	if err != nil {
		return nil, p.deny(ctx, req, endpoint, principal, "rate_limit", err)
	}

	result := &Result{
		Principal: principal,
		Risk:      risk,
		Decision:  decision,
		Release:   release,
	}

	// The device upsert is the one effect recorded only on full success. A
	// failed upsert degrades trust bookkeeping, not admission.
	if principal != nil {
		if trustResult, err := p.trust.Trust(ctx, principal.UserID, req); err == nil {
			result.Trust = trustResult
		}
	}

	return result, nil
}

// resolvePrincipal authenticates the request's credentials. A request
// presenting none resolves to a nil principal; the caller decides whether
// the endpoint admits anonymous traffic.
func (p *pipeline) resolvePrincipal(ctx context.Context, req *request.Request) (*identityDomain.Principal, error) {
	if apiKey := req.Header(headerAPIKey); apiKey != "" {
		return p.credentials.Validate(ctx, apiKey, req.IP)
	}

	authorization := req.Header(headerAuthorization)
	if authorization == "" {
		return nil, nil
	}

	token, ok := strings.CutPrefix(authorization, bearerScheme)
	if !ok {
		return nil, apperrors.Wrap(identityDomain.ErrMalformedCredential, "unsupported authorization scheme")
	}
	// API keys may ride the Bearer scheme; the prefix disambiguates.
	if strings.HasPrefix(token, identityDomain.KeyPrefix) {
		return p.credentials.Validate(ctx, token, req.IP)
	}
	return p.tokens.Validate(ctx, token)
}

// deny audits the rejection and returns the stage's error unchanged.
func (p *pipeline) deny(
	ctx context.Context,
	req *request.Request,
	endpoint string,
	principal *identityDomain.Principal,
	stage string,
	err error,
) error {
	eventContext := map[string]any{
		"endpoint": endpoint,
		"ip":       req.IP,
		"path":     req.Path,
		"stage":    stage,
		"reason":   err.Error(),
	}
	if principal != nil {
		eventContext["user_id"] = principal.UserID.String()
	}
	_ = p.auditRecorder.Record(ctx, audit.EventAdmissionDenied, eventContext)
	return err
}

// NewPipeline creates a Pipeline from the four admission stages and the
// endpoint policy registry.
func NewPipeline(
	credentials identityUsecase.CredentialUseCase,
	tokens identityUsecase.TokenUseCase,
	trust deviceUsecase.TrustUseCase,
	resolver rbacUsecase.ResolverUseCase,
	limiter ratelimitUsecase.LimiterUseCase,
	policies map[string]EndpointPolicy,
	auditRecorder audit.Recorder,
) Pipeline {
	return &pipeline{
		credentials:   credentials,
		tokens:        tokens,
		trust:         trust,
		resolver:      resolver,
		limiter:       limiter,
		policies:      policies,
		auditRecorder: auditRecorder,
	}
}
