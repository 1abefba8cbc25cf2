package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	identityUsecase "github.com/hdtickets/admission/internal/identity/usecase"
)

// RunRevokeToken revokes a session token by jti. The token's signature stays
// cryptographically valid; validation fails because the store entry is gone.
func RunRevokeToken(
	ctx context.Context,
	tokenUseCase identityUsecase.TokenUseCase,
	logger *slog.Logger,
	jti string,
	io IOTuple,
) error {
	if _, err := uuid.Parse(jti); err != nil {
		return fmt.Errorf("invalid jti: %w", err)
	}

	logger.Info("revoking token", slog.String("jti", jti))

	if err := tokenUseCase.Revoke(ctx, jti); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "Token %s revoked.\n", jti)

	logger.Info("token revoked", slog.String("jti", jti))

	return nil
}
