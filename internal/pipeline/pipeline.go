package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shelfsort/internal/config"
	"shelfsort/internal/history"
	"shelfsort/internal/logging"
	"shelfsort/internal/metadata"
	"shelfsort/internal/organizer"
	"shelfsort/internal/resolver"
	"shelfsort/internal/scanner"
	"shelfsort/internal/services"
	"shelfsort/internal/tracker"
)

// Resolver is the metadata-extraction boundary. Any error or empty document
// means "no metadata" to the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, record scanner.Record) (*metadata.Document, error)
}

// Summary aggregates the outcome of one run. In dry-run mode Processed and
// Skipped count intended actions; nothing was written.
type Summary struct {
	RunID       string
	DryRun      bool
	Scanned     int
	Processed   int
	Skipped     int
	AlreadyDone int
}

// Pipeline walks the input root and drives each audio-bearing folder through
// resolve, gate, and organize.
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	resolver  Resolver
	tracker   *tracker.Tracker
	organizer *organizer.Organizer
	journal   *history.Store
	dryRun    bool
}

// New constructs the pipeline with default dependencies: the configured
// resolver client, the tracker loaded from the state directory, and the
// history journal when enabled. Dry runs never open the journal.
func New(cfg *config.Config, logger *slog.Logger, dryRun bool) (*Pipeline, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	tr, err := tracker.Load(cfg.TrackerPath(), logger)
	if err != nil {
		return nil, err
	}

	var journal *history.Store
	if cfg.History.Enabled && !dryRun {
		journal, err = history.Open(cfg.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("open history journal: %w", err)
		}
	}

	client := resolver.NewClient(resolver.Config{
		APIKey:         cfg.AI.APIKey,
		BaseURL:        cfg.AI.BaseURL,
		Model:          cfg.AI.Model,
		Referer:        cfg.AI.Referer,
		Title:          cfg.AI.Title,
		TimeoutSeconds: cfg.AI.TimeoutSeconds,
	})

	return NewWithDependencies(cfg, logger, client, tr, journal, dryRun), nil
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, res Resolver, tr *tracker.Tracker, journal *history.Store, dryRun bool) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		resolver:  res,
		tracker:   tr,
		organizer: organizer.New(cfg, logger),
		journal:   journal,
		dryRun:    dryRun,
	}
}

// Close releases the history journal, if any.
func (p *Pipeline) Close() error {
	return p.journal.Close()
}

// Run scans the input root and processes every audio-bearing folder in walk
// order. Live runs hold an advisory lock under the state directory so a
// second invocation fails fast instead of racing the tracker; dry runs
// mutate nothing and take no lock.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	if !p.dryRun {
		lock := flock.New(p.cfg.LockPath())
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !locked {
			return nil, services.Wrap(services.ErrValidation, "running", "acquire run lock",
				"Another shelfsort run is active; wait for it to finish", nil)
		}
		defer func() { _ = lock.Unlock() }()
	}

	summary := &Summary{RunID: uuid.NewString(), DryRun: p.dryRun}
	p.logger.Info("starting run",
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Bool("dry_run", p.dryRun),
		logging.String("input_dir", p.cfg.Paths.InputDir))

	if err := p.journal.BeginRun(ctx, summary.RunID, p.dryRun); err != nil {
		p.logger.Warn("history journal unavailable", logging.Error(err))
	}

	walkErr := scanner.Walk(p.cfg.Paths.InputDir, func(record scanner.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Scanned++
		p.processFolder(ctx, record, summary)
		return nil
	})
	if walkErr != nil {
		return summary, fmt.Errorf("scan input root: %w", walkErr)
	}

	if err := p.journal.FinishRun(ctx, summary.RunID, summary.Scanned, summary.Processed, summary.Skipped); err != nil {
		p.logger.Warn("history journal unavailable", logging.Error(err))
	}

	p.logger.Info("run completed",
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("scanned", summary.Scanned),
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("already_done", summary.AlreadyDone))
	return summary, nil
}

// processFolder runs one folder through the per-folder state machine. All
// resolver failures degrade to a skip; only tracker persistence failures are
// logged as errors, and even those never abort the run.
func (p *Pipeline) processFolder(ctx context.Context, record scanner.Record, summary *Summary) {
	logger := p.logger.With(logging.String(logging.FieldFolder, record.RelPath))

	if entry, tracked := p.tracker.Get(record.RelPath); tracked && !record.ForceMarker {
		summary.AlreadyDone++
		logger.Debug("already tracked, skipping",
			logging.String("status", string(entry.Status)))
		return
	}
	if record.ForceMarker {
		logger.Info("force marker present, reprocessing")
	}

	doc, err := p.resolver.Resolve(ctx, record)
	if err != nil || doc == nil || doc.IsEmpty() {
		if err != nil {
			logger.Warn("resolver failed", logging.Error(err))
		}
		p.skip(ctx, record, summary, map[string]any{"reason": "no metadata"}, "no metadata", "")
		return
	}

	confidence := doc.TitleConfidence()
	if !confidence.Accepted() && !record.ForceMarker {
		p.skip(ctx, record, summary, map[string]any{
			"reason":        "low confidence",
			"ai_confidence": string(confidence),
		}, "low confidence", string(confidence))
		return
	}

	targetDir := p.organizer.TargetDir(*doc)
	if p.dryRun {
		summary.Processed++
		logger.Info("dry-run: would organize",
			logging.String(logging.FieldConfidence, string(confidence)),
			logging.String("target_dir", targetDir))
		return
	}

	result, err := p.organizer.Organize(ctx, record, *doc)
	if err != nil {
		logger.Error("organize failed", logging.Error(err))
		reason := fmt.Sprintf("organize failed: %v", err)
		p.skip(ctx, record, summary, map[string]any{"reason": reason}, reason, string(confidence))
		return
	}

	summary.Processed++
	if err := p.tracker.Mark(record.RelPath, tracker.StatusProcessed, map[string]any{
		"ai_confidence": string(confidence),
		"output_path":   result.TargetDir,
	}); err != nil {
		logger.Error("tracker update failed", logging.Error(err))
	}
	p.recordDecision(ctx, summary.RunID, history.Decision{
		RelPath:    record.RelPath,
		Status:     string(tracker.StatusProcessed),
		Confidence: string(confidence),
		TargetDir:  result.TargetDir,
	})
	logger.Info("organized",
		logging.String(logging.FieldConfidence, string(confidence)),
		logging.String("target_dir", result.TargetDir),
		logging.Int("copied_files", result.CopiedFiles))
}

// skip records a skip decision. Dry runs only log: the tracker and journal
// stay untouched so a later live run re-evaluates the folder.
func (p *Pipeline) skip(ctx context.Context, record scanner.Record, summary *Summary, extra map[string]any, reason, confidence string) {
	summary.Skipped++
	logger := p.logger.With(logging.String(logging.FieldFolder, record.RelPath))
	if p.dryRun {
		logger.Info("dry-run: would skip", logging.String(logging.FieldReason, reason))
		return
	}
	if err := p.tracker.Mark(record.RelPath, tracker.StatusSkipped, extra); err != nil {
		logger.Error("tracker update failed", logging.Error(err))
	}
	p.recordDecision(ctx, summary.RunID, history.Decision{
		RelPath:    record.RelPath,
		Status:     string(tracker.StatusSkipped),
		Reason:     reason,
		Confidence: confidence,
	})
	logger.Info("skipped", logging.String(logging.FieldReason, reason))
}

func (p *Pipeline) recordDecision(ctx context.Context, runID string, decision history.Decision) {
	if err := p.journal.RecordDecision(ctx, runID, decision); err != nil {
		p.logger.Warn("history journal unavailable", logging.Error(err))
	}
}
