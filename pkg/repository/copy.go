package repository

import (
	"context"
	"fmt"
	"log/slog"
)

// CopyResult reports how many rows CopyAll wrote.
type CopyResult struct {
	Groups   int
	Problems int
}

// CopyAll copies every problem set and problem from src into dst, keeping the
// source IDs so group references stay valid. Running it again overwrites the
// rows copied earlier.
func CopyAll(ctx context.Context, src ProblemRepository, dst ProblemImporter, logger *slog.Logger) (CopyResult, error) {
	var result CopyResult

	groups, err := src.ListGroups(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read problem sets: %w", err)
	}
	for _, g := range groups {
		if err := dst.UpsertGroup(ctx, g); err != nil {
			return result, fmt.Errorf("failed to copy problem set %s: %w", g.ID, err)
		}
		result.Groups++
	}

	problems, err := src.ListProblems(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read problems: %w", err)
	}
	for _, p := range problems {
		if err := dst.UpsertProblem(ctx, p); err != nil {
			return result, fmt.Errorf("failed to copy problem %q: %w", p.Name, err)
		}
		result.Problems++
	}

	logger.Info("Store copied", "groups", result.Groups, "problems", result.Problems)
	return result, nil
}
