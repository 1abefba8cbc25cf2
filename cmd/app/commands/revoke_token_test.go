package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hdtickets/admission/internal/audit"
	"github.com/hdtickets/admission/internal/config"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	identityRepository "github.com/hdtickets/admission/internal/identity/repository"
	identityService "github.com/hdtickets/admission/internal/identity/service"
	identityUsecase "github.com/hdtickets/admission/internal/identity/usecase"
	"github.com/hdtickets/admission/internal/store"
	userDomain "github.com/hdtickets/admission/internal/user/domain"
	userRepository "github.com/hdtickets/admission/internal/user/repository"
)

func TestRunRevokeToken(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		JWTSigningKey: "test-signing-key",
		JWTIssuer:     "https://api.test.example",
		JWTExpiration: 24 * time.Hour,
	}
	memory := store.NewMemory()
	directory := userRepository.NewMemoryDirectory()
	tokens := identityUsecase.NewTokenUseCase(
		cfg,
		identityRepository.NewStoreTokenRepository(memory),
		directory,
		identityService.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer),
		audit.NewMemoryRecorder(),
	)

	t.Run("revoke-then-validate-fails", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		directory.Add(&userDomain.User{ID: userID, Role: "customer", IsActive: true})

		issued, err := tokens.Issue(ctx, &identityDomain.IssueTokenInput{
			UserID: userID,
			Scopes: []string{"*"},
		})
		require.NoError(t, err)

		var out bytes.Buffer
		err = RunRevokeToken(ctx, tokens, logger, issued.JTI, IOTuple{Writer: &out})
		require.NoError(t, err)
		require.Contains(t, out.String(), "revoked")

		_, err = tokens.Validate(ctx, issued.AccessToken)
		require.ErrorIs(t, err, identityDomain.ErrTokenRevoked)
	})

	t.Run("invalid-jti", func(t *testing.T) {
		var out bytes.Buffer
		err := RunRevokeToken(ctx, tokens, logger, "garbage", IOTuple{Writer: &out})
		require.Error(t, err)
	})
}
