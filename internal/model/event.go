package model

import "time"

// IngestionEvent is published to Kafka after a successful ingestion run.
type IngestionEvent struct {
	RunID     string    `json:"run_id"`
	Dates     int       `json:"dates"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
}
