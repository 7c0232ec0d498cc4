package storage

import (
	"context"
	"errors"

	"evosearch/internal/model"
)

var ErrStoreNotInitialized = errors.New("store is not initialized")

// Store persists finished runs together with their improvement history and
// the lineage of their best individual.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns every run, oldest first.
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveImprovements(ctx context.Context, runID string, improvements []model.ImprovementRecord) error
	GetImprovements(ctx context.Context, runID string) ([]model.ImprovementRecord, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
	DeleteRun(ctx context.Context, runID string) error
}
