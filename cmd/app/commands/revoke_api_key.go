package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	identityUsecase "github.com/hdtickets/admission/internal/identity/usecase"
)

// RunRevokeAPIKey deactivates an API key. Revoked keys report the same error
// as unknown ones on validation.
func RunRevokeAPIKey(
	ctx context.Context,
	credentialUseCase identityUsecase.CredentialUseCase,
	logger *slog.Logger,
	userIDRaw string,
	credentialIDRaw string,
	io IOTuple,
) error {
	userID, err := uuid.Parse(userIDRaw)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	credentialID, err := uuid.Parse(credentialIDRaw)
	if err != nil {
		return fmt.Errorf("invalid credential ID: %w", err)
	}

	logger.Info("revoking api key",
		slog.String("credential_id", credentialID.String()),
		slog.String("user_id", userID.String()),
	)

	if err := credentialUseCase.Revoke(ctx, userID, credentialID); err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "Credential %s revoked.\n", credentialID)

	logger.Info("api key revoked", slog.String("credential_id", credentialID.String()))

	return nil
}
