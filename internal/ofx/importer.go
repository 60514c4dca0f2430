package ofx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"golang.org/x/time/rate"
)

// MovementCreator is the slice of the movements client the importer uses.
type MovementCreator interface {
	Create(ctx context.Context, in model.MovementInput) (model.Movement, error)
}

// Failure is a draft the backend or pre-flight validation rejected.
type Failure struct {
	Err   error
	Draft Draft
}

// Result summarizes an import run.
type Result struct {
	Created  []model.Movement
	Failures []Failure
}

// Importer creates drafts one at a time at a bounded rate.
type Importer struct {
	creator MovementCreator
	limiter *rate.Limiter
	logger  *slog.Logger
	// OnProgress, when set, is called after each draft is processed.
	OnProgress func(done, total int)
}

// NewImporter creates an importer that sends at most perSecond requests per
// second. A non-positive rate disables throttling.
func NewImporter(creator MovementCreator, perSecond float64) *Importer {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Importer{
		creator: creator,
		limiter: rate.NewLimiter(limit, 1),
		logger:  slog.Default().With("component", "importer"),
	}
}

// Import creates every draft. Per-draft failures are collected and the run
// continues; it stops early only when the session is rejected, the backend
// is unreachable, or ctx ends.
func (im *Importer) Import(ctx context.Context, drafts []Draft) (Result, error) {
	var res Result

	for i, d := range drafts {
		if err := im.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("import interrupted: %w", err)
		}

		mv, err := im.creator.Create(ctx, d.Input)
		switch {
		case err == nil:
			res.Created = append(res.Created, mv)
		case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrBackendUnavailable), ctx.Err() != nil:
			return res, fmt.Errorf("import stopped after %d of %d movements: %w", i, len(drafts), err)
		default:
			im.logger.Warn("failed to import movement",
				"reference", d.Input.Reference,
				"kind", common.KindOf(err),
				"error", err)
			res.Failures = append(res.Failures, Failure{Draft: d, Err: err})
		}

		if im.OnProgress != nil {
			im.OnProgress(i+1, len(drafts))
		}
	}

	im.logger.Info("import finished",
		"created", len(res.Created),
		"failed", len(res.Failures))

	return res, nil
}
