// Package jobs runs background ingestion work over Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeIngestFile loads a single data file into the catalog.
	TaskTypeIngestFile = "ingest:file"
	// TaskTypeIngestAll loads every data file in the data directory.
	TaskTypeIngestAll = "ingest:all"
)

// IngestFilePayload names the data file to load, without extension.
type IngestFilePayload struct {
	File string `json:"file"`
}

// NewIngestFileTask constructs an Asynq task for a single-file ingest.
func NewIngestFileTask(payload IngestFilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeIngestFile, data, asynq.Queue(QueueDefault)), nil
}

// NewIngestAllTask constructs an Asynq task for a full-directory ingest.
func NewIngestAllTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeIngestAll, nil, asynq.Queue(QueueDefault)), nil
}
