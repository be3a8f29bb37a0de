package types

// TargetState is the install state machine position a target ended in.
type TargetState string

const (
	// StatePending means the target has not started yet
	StatePending TargetState = "pending"

	// StateCloning means the repository is being cloned
	StateCloning TargetState = "cloning"

	// StateResolving means the selector is being resolved to a commit
	StateResolving TargetState = "resolving"

	// StateCopying means files are being materialized
	StateCopying TargetState = "copying"

	// StateRecorded means the lockfile was updated for this target
	StateRecorded TargetState = "recorded"

	// StateSkipped means the target was intentionally not processed
	StateSkipped TargetState = "skipped"

	// StateFailed means the target hit a terminal error
	StateFailed TargetState = "failed"
)

// TargetResult is the per-target outcome of a batch operation.
type TargetResult struct {
	// Name is the plugin display name
	Name string

	// Source is the display source id (repo shorthand, URL, or path)
	Source string

	// State is where the state machine ended
	State TargetState

	// CommitSHA is set when the target resolved to a commit
	CommitSHA string

	// PreviousSHA is the commit recorded before an upgrade moved the pin
	PreviousSHA string

	// Reason explains a skip in one line
	Reason string

	// Err is the terminal error for failed targets
	Err error
}

// Report aggregates per-target outcomes for a batch command. Batch
// commands always attempt every target; the exit status reflects whether
// any of them failed.
type Report struct {
	Results []TargetResult
}

// Add appends a result.
func (r *Report) Add(res TargetResult) {
	r.Results = append(r.Results, res)
}

// Merge appends all results from another report.
func (r *Report) Merge(other Report) {
	r.Results = append(r.Results, other.Results...)
}

// Installed returns the targets that reached Recorded.
func (r *Report) Installed() []TargetResult {
	return r.filter(StateRecorded)
}

// Skipped returns the targets that exited early without error.
func (r *Report) Skipped() []TargetResult {
	return r.filter(StateSkipped)
}

// Failed returns the targets that hit a terminal error.
func (r *Report) Failed() []TargetResult {
	return r.filter(StateFailed)
}

// HasFailures reports whether at least one target failed.
func (r *Report) HasFailures() bool {
	return len(r.Failed()) > 0
}

func (r *Report) filter(state TargetState) []TargetResult {
	var out []TargetResult
	for _, res := range r.Results {
		if res.State == state {
			out = append(out, res)
		}
	}
	return out
}
