package application

import (
	"context"

	"github.com/go-git/go-billy/v5"
	"github.com/iwat/iostream/internal/domain"
)

// Filesystem is the set of handle operations the stages rely on
type Filesystem = billy.Basic

// Journal records runs and their stage results
type Journal interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	FinishRun(ctx context.Context, run *domain.Run) error
	CreateStageResult(ctx context.Context, result *domain.StageResult) (*domain.StageResult, error)
	RecentRuns(ctx context.Context, limit int) ([]*domain.Run, error)
	StageResultsByRunID(ctx context.Context, runID string) ([]*domain.StageResult, error)
	PruneRuns(ctx context.Context, keep int) (int64, error)
}

// NopJournal discards everything
type NopJournal struct{}

func (NopJournal) CreateRun(context.Context, *domain.Run) error { return nil }

func (NopJournal) FinishRun(context.Context, *domain.Run) error { return nil }

func (NopJournal) CreateStageResult(_ context.Context, result *domain.StageResult) (*domain.StageResult, error) {
	return result, nil
}

func (NopJournal) RecentRuns(context.Context, int) ([]*domain.Run, error) { return nil, nil }

func (NopJournal) StageResultsByRunID(context.Context, string) ([]*domain.StageResult, error) {
	return nil, nil
}

func (NopJournal) PruneRuns(context.Context, int) (int64, error) { return 0, nil }
