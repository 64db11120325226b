package domain

// BatchSummary is the per-run accounting surfaced to the user: how many
// entities made it through, how many were skipped for lack of qualifying
// data, and how many failed on malformed input. One entity's failure
// never aborts the batch.
type BatchSummary struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// Total returns the number of entities the batch attempted.
func (s BatchSummary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}
