package models

import "time"

// RunStatus is the terminal state of a pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunEmpty     RunStatus = "empty"
	RunFailed    RunStatus = "failed"
)

// PipelineRun is the audit record of one fetch-to-series execution.
// It holds counts and outcome only, never fetched rows.
type PipelineRun struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         RunStatus
	Stage          string // failing stage; empty on success
	Error          string
	RecordsFetched int
	RowsNormalized int
	RowsKept       int
	SeriesPoints   int
	WindowSize     int
	Indicator      string
	Denylist       []string
}
