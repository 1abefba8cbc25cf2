package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	identityUsecase "github.com/hdtickets/admission/internal/identity/usecase"
	userDomain "github.com/hdtickets/admission/internal/user/domain"
	userRepository "github.com/hdtickets/admission/internal/user/repository"
)

// IssueAPIKeyParams bundles the flag values for the issue-api-key command.
type IssueAPIKeyParams struct {
	UserID      string
	Role        string
	Name        string
	Scopes      []string
	Tier        string
	IPWhitelist []string
	Format      string
}

// RunIssueAPIKey issues a new API key and prints the plain key.
// The plain key embeds the secret and is shown exactly once; only its hash is
// stored. The user is registered in the local directory with the given role so
// the credential use case can resolve the owner.
func RunIssueAPIKey(
	ctx context.Context,
	credentialUseCase identityUsecase.CredentialUseCase,
	directory *userRepository.MemoryDirectory,
	logger *slog.Logger,
	params IssueAPIKeyParams,
	io IOTuple,
) error {
	userID, err := uuid.Parse(params.UserID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	directory.Add(&userDomain.User{
		ID:       userID,
		Role:     params.Role,
		IsActive: true,
	})

	logger.Info("issuing api key",
		slog.String("user_id", userID.String()),
		slog.String("name", params.Name),
		slog.String("tier", params.Tier),
	)

	output, err := credentialUseCase.Issue(ctx, &identityDomain.IssueCredentialInput{
		UserID:      userID,
		Name:        params.Name,
		Scopes:      params.Scopes,
		Tier:        params.Tier,
		IPWhitelist: params.IPWhitelist,
	})
	if err != nil {
		return fmt.Errorf("failed to issue api key: %w", err)
	}

	if params.Format == "json" {
		outputJSON(map[string]any{
			"id":      output.ID.String(),
			"api_key": output.PlainKey,
			"scopes":  output.Scopes,
			"tier":    output.Tier,
		}, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Credential ID: %s\n", output.ID)
		_, _ = fmt.Fprintf(io.Writer, "API Key:       %s\n", output.PlainKey)
		_, _ = fmt.Fprintf(io.Writer, "Tier:          %s\n", output.Tier)
		_, _ = fmt.Fprintln(io.Writer, "\nStore the API key now. It cannot be recovered later.")
	}

	logger.Info("api key issued",
		slog.String("credential_id", output.ID.String()),
		slog.String("user_id", userID.String()),
	)

	return nil
}
