package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/iwat/iostream/internal/domain"
	"github.com/oklog/ulid"
)

// Options selects the files and payload of the stages
type Options struct {
	Input      string
	Output     string
	Payload    string
	BufferSize int
}

func DefaultOptions() Options {
	return Options{
		Input:      domain.DefaultInputPath,
		Output:     domain.DefaultOutputPath,
		Payload:    domain.DefaultPayload,
		BufferSize: domain.CopyBufferSize,
	}
}

type App struct {
	fs      Filesystem
	stdout  io.Writer
	logger  *slog.Logger
	journal Journal
	opts    Options
	now     func() time.Time
	entropy io.Reader
}

func NewApp(fs Filesystem, stdout io.Writer, logger *slog.Logger, journal Journal, opts Options) *App {
	if journal == nil {
		journal = NopJournal{}
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = domain.CopyBufferSize
	}
	return &App{
		fs:      fs,
		stdout:  stdout,
		logger:  logger,
		journal: journal,
		opts:    opts,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// failureMessages prefixes the error log of each stage
var failureMessages = map[domain.Stage]string{
	domain.StageWrite: "An error occurred while writing to the file",
	domain.StageRead:  "An error occurred while reading the file",
	domain.StageCopy:  "An error occurred while copying the file",
	domain.StageLines: "An error occurred while reading the final output",
}

// Run executes stages in the given order, all four when none is given. A
// failing stage is logged and recorded, and the remaining stages still run.
func (app *App) Run(ctx context.Context, stages ...domain.Stage) *domain.Run {
	if len(stages) == 0 {
		stages = domain.AllStages()
	}

	now := app.now().UTC()
	run := &domain.Run{
		ID:        ulid.MustNew(ulid.Timestamp(now), app.entropy).String(),
		StartedAt: now,
	}
	if err := app.journal.CreateRun(ctx, run); err != nil {
		app.logger.Warn("failed to journal run", "run", run.ID, "err", err)
	}

	for _, stage := range stages {
		result, err := app.RunStage(ctx, stage)
		result.RunID = run.ID
		if err != nil {
			app.logger.Error(failureMessages[stage], "err", err)
		}

		recorded, err := app.journal.CreateStageResult(ctx, result)
		if err != nil {
			app.logger.Warn("failed to journal stage result", "run", run.ID, "stage", stage, "err", err)
		} else {
			result = recorded
		}
		run.Results = append(run.Results, result)
	}

	run.FinishedAt = app.now().UTC()
	if err := app.journal.FinishRun(ctx, run); err != nil {
		app.logger.Warn("failed to journal run", "run", run.ID, "err", err)
	}
	app.logger.Debug("run finished", "run", run.ID, "stages", len(run.Results), "failed", run.Failed())
	return run
}

// RunStage executes a single stage
func (app *App) RunStage(ctx context.Context, stage domain.Stage) (*domain.StageResult, error) {
	switch stage {
	case domain.StageWrite:
		return app.Write(ctx)
	case domain.StageRead:
		return app.Read(ctx)
	case domain.StageCopy:
		return app.Copy(ctx)
	case domain.StageLines:
		return app.PrintLines(ctx)
	}
	result := app.newResult(stage, "")
	err := fmt.Errorf("unknown stage %s", stage)
	app.finish(result, &err)
	return result, err
}

// History returns the newest runs with their stage results
func (app *App) History(ctx context.Context, limit int) ([]*domain.Run, error) {
	runs, err := app.journal.RecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	for _, run := range runs {
		run.Results, err = app.journal.StageResultsByRunID(ctx, run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load stage results of run %s: %w", run.ID, err)
		}
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs from the journal
func (app *App) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("cannot keep a negative number of runs")
	}
	deleted, err := app.journal.PruneRuns(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return deleted, nil
}
