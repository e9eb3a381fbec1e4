package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"voxpitch/internal/jobs"
	"voxpitch/internal/logging"
	"voxpitch/internal/services"
	"voxpitch/internal/store"
)

// Engine is the transform contract the orchestrator depends on.
type Engine interface {
	Apply(ctx context.Context, sourcePath, destPath string, parameter float64) error
}

// Orchestrator implements the three pipeline operations over the store and
// engine. It owns validation order: client input is rejected before any
// store or engine I/O happens.
type Orchestrator struct {
	store   *store.Store
	engine  Engine
	journal *jobs.Store
	logger  *slog.Logger
}

// IngestResult describes a stored original plus ingest metadata.
type IngestResult struct {
	Artifact     store.Artifact
	OriginalName string
}

// New constructs an orchestrator. The journal may be nil; recording then
// becomes a no-op.
func New(artifacts *store.Store, engine Engine, journal *jobs.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:   artifacts,
		engine:  engine,
		journal: journal,
		logger:  logger.With(logging.String("component", "pipeline")),
	}
}

// Ingest stores an uploaded clip as an original artifact. The client-supplied
// filename is NFC-normalized before being echoed back; it never influences
// storage naming.
func (o *Orchestrator) Ingest(ctx context.Context, r io.Reader, declaredMIME, declaredName string) (IngestResult, error) {
	name := norm.NFC.String(strings.TrimSpace(declaredName))
	artifact, err := o.store.Save(r, declaredMIME, name)
	if err != nil {
		return IngestResult{}, err
	}

	logging.WithContext(ctx, o.logger).Info("artifact ingested",
		logging.String("artifact_id", artifact.ID),
		logging.Int64("size", artifact.Size),
		logging.String("content_type", declaredMIME),
	)
	return IngestResult{Artifact: artifact, OriginalName: name}, nil
}

// Transform produces a new derived artifact from an existing original.
// Re-issuing with a different parameter always mints a new id; prior derived
// artifacts are never mutated. On engine failure no derived artifact exists.
func (o *Orchestrator) Transform(ctx context.Context, fileID string, value float64) (store.Artifact, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value > 100 {
		return store.Artifact{}, services.Wrap(services.ErrValidation, "pipeline", "transform",
			fmt.Sprintf("transform value %v outside [0,100]", value), nil)
	}

	sourcePath, err := o.store.Resolve(fileID, store.KindOriginal)
	if err != nil {
		return store.Artifact{}, err
	}

	logger := logging.WithContext(ctx, o.logger)
	jobID := o.journalBegin(ctx, fileID, value)

	scratch := o.store.ScratchPath(".mp3")
	if err := o.engine.Apply(ctx, sourcePath, scratch, value); err != nil {
		o.journalFail(ctx, jobID, err)
		logger.Error("transform failed",
			logging.String("source_id", fileID),
			logging.Float64("value", value),
			logging.Error(err),
		)
		return store.Artifact{}, err
	}

	derived, err := o.store.Promote(scratch)
	if err != nil {
		o.journalFail(ctx, jobID, err)
		return store.Artifact{}, err
	}

	o.journalComplete(ctx, jobID, derived.ID)
	logger.Info("transform complete",
		logging.String("source_id", fileID),
		logging.String("derived_id", derived.ID),
		logging.Float64("value", value),
	)
	return derived, nil
}

// Fetch opens an artifact for streaming. The caller owns the returned file.
func (o *Orchestrator) Fetch(ctx context.Context, id string, kind store.Kind) (*os.File, store.Artifact, error) {
	return o.store.Open(id, kind)
}

func (o *Orchestrator) journalBegin(ctx context.Context, sourceID string, value float64) int64 {
	if o.journal == nil {
		return 0
	}
	id, err := o.journal.Begin(ctx, sourceID, value)
	if err != nil {
		o.logger.Warn("journal begin failed", logging.Error(err))
		return 0
	}
	return id
}

func (o *Orchestrator) journalComplete(ctx context.Context, jobID int64, derivedID string) {
	if o.journal == nil || jobID == 0 {
		return
	}
	if err := o.journal.Complete(ctx, jobID, derivedID); err != nil {
		o.logger.Warn("journal complete failed", logging.Error(err))
	}
}

func (o *Orchestrator) journalFail(ctx context.Context, jobID int64, cause error) {
	if o.journal == nil || jobID == 0 {
		return
	}
	if err := o.journal.Fail(ctx, jobID, cause.Error()); err != nil {
		o.logger.Warn("journal fail-mark failed", logging.Error(err))
	}
}
