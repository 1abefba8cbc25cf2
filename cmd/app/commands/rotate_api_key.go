package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	identityUsecase "github.com/hdtickets/admission/internal/identity/usecase"
)

// RunRotateAPIKey replaces the secret of an existing API key and prints the
// replacement. The previous secret stops validating immediately.
func RunRotateAPIKey(
	ctx context.Context,
	credentialUseCase identityUsecase.CredentialUseCase,
	logger *slog.Logger,
	userIDRaw string,
	credentialIDRaw string,
	format string,
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

	logger.Info("rotating api key",
		slog.String("credential_id", credentialID.String()),
		slog.String("user_id", userID.String()),
	)

	output, err := credentialUseCase.Rotate(ctx, userID, credentialID)
	if err != nil {
		return fmt.Errorf("failed to rotate api key: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]any{
			"id":      output.ID.String(),
			"api_key": output.PlainKey,
		}, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Credential ID: %s\n", output.ID)
		_, _ = fmt.Fprintf(io.Writer, "New API Key:   %s\n", output.PlainKey)
		_, _ = fmt.Fprintln(io.Writer, "\nStore the new API key now. The old key no longer validates.")
	}

	logger.Info("api key rotated", slog.String("credential_id", output.ID.String()))

	return nil
}
