package domain

import "time"

// AnalysisRun records one completed analysis pass.
type AnalysisRun struct {
	RunID             string    `json:"run_id"` // uuid
	SnapshotID        string    `json:"snapshot_id"`
	ReferenceExchange string    `json:"reference_exchange"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	Materials         int       `json:"materials"`     // cost breakdowns produced
	Scores            int       `json:"scores"`        // score records produced
	Opportunities     int       `json:"opportunities"` // arbitrage opportunities reported
	Warnings          int       `json:"warnings"`
}

// Duration returns the wall time of the pass.
func (r AnalysisRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
