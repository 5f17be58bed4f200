package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/campus-atlas/campus-atlas/internal/registry"
	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// FileReport summarizes one data file's ingest run.
type FileReport struct {
	FileName string `json:"fileName"`
	Inserted int    `json:"insertedCount"`
	Skipped  int    `json:"skippedCount"`
}

// DirectoryReport aggregates reports across every file in the data directory.
type DirectoryReport struct {
	TotalInserted int          `json:"totalInserted"`
	TotalSkipped  int          `json:"totalSkipped"`
	Results       []FileReport `json:"results"`
}

// Ingestor loads university records from JSON data files. Records whose
// contact email already exists in storage are skipped, not updated.
type Ingestor struct {
	dataDir string
	repo    registry.Repository
	cache   *registry.Cache
	logger  *slog.Logger
}

// NewIngestor constructs an Ingestor over the given data directory.
func NewIngestor(dataDir string, repo registry.Repository, cache *registry.Cache, logger *slog.Logger) *Ingestor {
	return &Ingestor{dataDir: dataDir, repo: repo, cache: cache, logger: logger}
}

// IngestFile loads <name>.json from the data directory.
func (in *Ingestor) IngestFile(ctx context.Context, name string) (FileReport, error) {
	fileName := name + ".json"
	report, err := in.ingestPath(ctx, filepath.Join(in.dataDir, fileName))
	if err != nil {
		return FileReport{FileName: fileName}, err
	}
	in.bump(ctx)
	return report, nil
}

// IngestAll loads every JSON file in the data directory.
func (in *Ingestor) IngestAll(ctx context.Context) (DirectoryReport, error) {
	entries, err := os.ReadDir(in.dataDir)
	if err != nil {
		return DirectoryReport{}, fmt.Errorf("jobs: read data dir: %w", err)
	}

	agg := DirectoryReport{Results: []FileReport{}}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		report, err := in.ingestPath(ctx, filepath.Join(in.dataDir, entry.Name()))
		if err != nil {
			return agg, err
		}
		agg.TotalInserted += report.Inserted
		agg.TotalSkipped += report.Skipped
		agg.Results = append(agg.Results, report)
	}
	in.bump(ctx)
	return agg, nil
}

func (in *Ingestor) ingestPath(ctx context.Context, path string) (FileReport, error) {
	report := FileReport{FileName: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("jobs: read data file: %w", err)
	}
	var records []registry.University
	if err := json.Unmarshal(data, &records); err != nil {
		return report, fmt.Errorf("jobs: decode %s: %w", report.FileName, err)
	}

	for i := range records {
		existing, err := in.repo.FindByContactEmail(ctx, records[i].ContactInfo.Email)
		switch {
		case err == nil && existing != nil:
			report.Skipped++
		case errors.Is(err, shared.ErrNotFound):
			if err := in.repo.Create(ctx, &records[i]); err != nil {
				if errors.Is(err, shared.ErrAlreadyExists) {
					report.Skipped++
					continue
				}
				return report, err
			}
			report.Inserted++
		default:
			return report, err
		}
	}
	return report, nil
}

func (in *Ingestor) bump(ctx context.Context) {
	if in.cache == nil {
		return
	}
	if err := in.cache.Bump(ctx); err != nil {
		in.logger.Warn("ingest cache bump", slog.Any("error", err))
	}
}

// HandleIngestFileTask processes TaskTypeIngestFile tasks.
func (in *Ingestor) HandleIngestFileTask(ctx context.Context, t *asynq.Task) error {
	var payload IngestFilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.File == "" {
		return asynq.SkipRetry
	}
	report, err := in.IngestFile(ctx, payload.File)
	if err != nil {
		in.logger.Error("ingest file", slog.String("file", payload.File), slog.Any("error", err))
		return err
	}
	in.logger.Info("ingest file complete",
		slog.String("file", report.FileName),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped))
	return nil
}

// HandleIngestAllTask processes TaskTypeIngestAll tasks.
func (in *Ingestor) HandleIngestAllTask(ctx context.Context, t *asynq.Task) error {
	report, err := in.IngestAll(ctx)
	if err != nil {
		in.logger.Error("ingest all", slog.Any("error", err))
		return err
	}
	in.logger.Info("ingest all complete",
		slog.Int("files", len(report.Results)),
		slog.Int("inserted", report.TotalInserted),
		slog.Int("skipped", report.TotalSkipped))
	return nil
}
