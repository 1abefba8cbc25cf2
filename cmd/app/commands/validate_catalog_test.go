package commands

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hdtickets/admission/internal/audit"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
	rbacRepository "github.com/hdtickets/admission/internal/rbac/repository"
	rbacUsecase "github.com/hdtickets/admission/internal/rbac/usecase"
	"github.com/hdtickets/admission/internal/store"
	userRepository "github.com/hdtickets/admission/internal/user/repository"
)

func newResolverForCatalog(t *testing.T, catalog *rbacDomain.Catalog) rbacUsecase.ResolverUseCase {
	t.Helper()

	memory := store.NewMemory()
	return rbacUsecase.NewResolverUseCase(
		catalog,
		userRepository.NewMemoryDirectory(),
		rbacRepository.NewStoreDynamicRoleRepository(memory),
		rbacUsecase.NewStorePermissionCache(memory, time.Hour),
		rbacUsecase.DefaultPolicies(),
		audit.NewMemoryRecorder(),
	)
}

func TestRunValidateCatalog(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("default-catalog-is-valid", func(t *testing.T) {
		resolver := newResolverForCatalog(t, rbacDomain.DefaultCatalog())

		var out bytes.Buffer
		err := RunValidateCatalog(resolver, logger, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), "structurally valid")
	})

	t.Run("defective-catalog-lists-every-issue", func(t *testing.T) {
		catalog := rbacDomain.NewCatalog(
			map[string]rbacDomain.Permission{
				"a.read":  {Inherits: []string{"a.write"}},
				"a.write": {Inherits: []string{"a.read"}},
				"b.read":  {Inherits: []string{"b.missing"}},
			},
			map[string]rbacDomain.Role{},
		)
		resolver := newResolverForCatalog(t, catalog)

		var out bytes.Buffer
		err := RunValidateCatalog(resolver, logger, "text", IOTuple{Writer: &out})

		require.Error(t, err)
		require.Contains(t, out.String(), rbacDomain.IssueCycle)
		require.Contains(t, out.String(), rbacDomain.IssueDangling)
	})

	t.Run("json-format", func(t *testing.T) {
		resolver := newResolverForCatalog(t, rbacDomain.DefaultCatalog())

		var out bytes.Buffer
		err := RunValidateCatalog(resolver, logger, "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), `"valid": true`)
	})
}
