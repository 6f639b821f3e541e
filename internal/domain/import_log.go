package domain

import "time"

// ImportLog marks a batch file as already ingested.
type ImportLog struct {
	FileName    string    `json:"file_name" db:"file_name"`
	RecordCount int       `json:"record_count" db:"record_count"`
	ImportedAt  time.Time `json:"imported_at" db:"imported_at"`
}

// ImportResult summarizes one importer run.
type ImportResult struct {
	FileName string `json:"file_name"`
	Skipped  bool   `json:"skipped"`
	Inserted int    `json:"inserted"`
}
