package dto

// RunReport summarizes one reconciliation pass. Per-session failures are
// counted here, never surfaced as a pass error.
type RunReport struct {
	RunID      string `json:"runId"`
	Discovered int    `json:"discovered"`
	Processed  int    `json:"processed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}
