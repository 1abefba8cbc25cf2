package commands

import (
	"fmt"
	"log/slog"

	rbacUsecase "github.com/hdtickets/admission/internal/rbac/usecase"
)

// RunValidateCatalog checks the permission catalog for structural defects and
// prints every issue found. All defects are collected and reported together so
// operators see the complete picture in one pass. Returns an error when the
// catalog has at least one defect.
func RunValidateCatalog(
	resolverUseCase rbacUsecase.ResolverUseCase,
	logger *slog.Logger,
	format string,
	io IOTuple,
) error {
	issues := resolverUseCase.ValidateCatalog()

	if format == "json" {
		outputJSON(map[string]any{
			"valid":  len(issues) == 0,
			"issues": issues,
		}, io.Writer)
	} else {
		if len(issues) == 0 {
			_, _ = fmt.Fprintln(io.Writer, "Catalog is structurally valid.")
		} else {
			_, _ = fmt.Fprintf(io.Writer, "Catalog has %d defect(s):\n", len(issues))
			for _, issue := range issues {
				_, _ = fmt.Fprintf(io.Writer, "  [%s] %s: %s\n", issue.Kind, issue.Permission, issue.Detail)
			}
		}
	}

	if len(issues) > 0 {
		logger.Error("catalog validation failed", slog.Int("issues", len(issues)))
		return fmt.Errorf("catalog has %d structural defect(s)", len(issues))
	}

	logger.Info("catalog validation passed")
	return nil
}
