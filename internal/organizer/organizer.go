package organizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shelfsort/internal/config"
	"shelfsort/internal/fileutil"
	"shelfsort/internal/logging"
	"shelfsort/internal/metadata"
	"shelfsort/internal/scanner"
	"shelfsort/internal/services"
)

// SidecarName is the metadata document written next to organized audio files.
const SidecarName = "metadata.json"

// Result describes what a single organize call produced.
type Result struct {
	// TargetDir is the absolute destination folder under the output root.
	TargetDir string
	// CopiedFiles counts the regular files copied into TargetDir.
	CopiedFiles int
	// SidecarWritten reports whether a metadata sidecar was created.
	SidecarWritten bool
}

// Organizer copies source folders into the Author/Series/Title library layout.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	return &Organizer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "organizer"),
	}
}

// TargetDir returns the destination folder the document organizes into,
// without touching the filesystem. Dry runs report this path.
func (o *Organizer) TargetDir(doc metadata.Document) string {
	segments := metadata.Synthesize(doc)
	parts := []string{o.cfg.Paths.OutputDir, segments.Author}
	if segments.Series != "" {
		parts = append(parts, segments.Series)
	}
	parts = append(parts, segments.Title)
	return filepath.Join(parts...)
}

// Organize copies every regular file from the record's folder into the
// destination derived from the document. The source folder is never modified
// or removed. Existing destination files are overwritten, so re-running a
// force-processed folder converges on the latest copy rather than failing.
func (o *Organizer) Organize(ctx context.Context, record scanner.Record, doc metadata.Document) (*Result, error) {
	targetDir := o.TargetDir(doc)

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, services.Wrap(
			services.ErrExternalService,
			"organizing",
			"create target directory",
			fmt.Sprintf("Failed to create library folder %s; check output_dir permissions", targetDir),
			err,
		)
	}

	result := &Result{TargetDir: targetDir}
	for _, name := range record.Files {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrTimeout, "organizing", "copy files", "Organization interrupted", err)
		}
		src := filepath.Join(record.FullPath, name)
		info, err := os.Lstat(src)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalService, "organizing", "stat source file",
				fmt.Sprintf("Failed to stat %s", src), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := fileutil.CopyFilePreserve(src, filepath.Join(targetDir, name)); err != nil {
			return nil, services.Wrap(services.ErrExternalService, "organizing", "copy file",
				fmt.Sprintf("Failed to copy %s into library", name), err)
		}
		result.CopiedFiles++
	}

	if o.cfg.Organize.WriteSidecar {
		if err := o.writeSidecar(targetDir, doc); err != nil {
			return nil, err
		}
		result.SidecarWritten = true
	}

	o.logger.Info("organized folder",
		logging.String(logging.FieldFolder, record.RelPath),
		logging.String("target_dir", targetDir),
		logging.Int("copied_files", result.CopiedFiles))
	return result, nil
}

// writeSidecar records the resolved document next to the organized files so
// later tooling can see what the library layout was derived from.
func (o *Organizer) writeSidecar(targetDir string, doc metadata.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, "organizing", "encode sidecar",
			"Failed to encode metadata sidecar", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(targetDir, SidecarName), data, 0o644); err != nil {
		return services.Wrap(services.ErrExternalService, "organizing", "write sidecar",
			"Failed to write metadata sidecar", err)
	}
	return nil
}
