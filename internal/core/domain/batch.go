package domain

// BatchFailure records one failed item of a batch operation.
type BatchFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult is the aggregated outcome of a batch operation (payAll, batch
// deletion). Batches never abort early; every item lands in exactly one list.
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// Ok reports whether every item succeeded.
func (r BatchResult) Ok() bool {
	return len(r.Failed) == 0
}

// AddSuccess appends a succeeded item id.
func (r *BatchResult) AddSuccess(id string) {
	r.Succeeded = append(r.Succeeded, id)
}

// AddFailure appends a failed item id with the classified reason.
func (r *BatchResult) AddFailure(id string, err error) {
	reason := "unknown"
	if err != nil {
		reason = err.Error()
	}
	r.Failed = append(r.Failed, BatchFailure{ID: id, Reason: reason})
}
