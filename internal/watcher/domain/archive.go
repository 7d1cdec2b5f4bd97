package domain

import "time"

// Archive is the stored snapshot of one terminal job: the parsed results
// document plus the final geometry and raw output.
type Archive struct {
	JobNumber  int       `db:"job_number"`
	JobName    string    `db:"job_name"`
	Engine     string    `db:"engine"`
	Status     string    `db:"status"`
	Results    []byte    `db:"results"` // results document JSON
	Geometry   string    `db:"geometry"`
	Output     string    `db:"output"`
	ArchivedAt time.Time `db:"archived_at"`
}

// JobEvent is published when a watched job is observed in a terminal
// status for the first time.
type JobEvent struct {
	EventID    string    `json:"event_id"`
	JobNumber  int       `json:"job_number"`
	JobName    string    `json:"job_name"`
	Engine     string    `json:"engine"`
	Status     string    `json:"status"`
	ObservedAt time.Time `json:"observed_at"`
}
