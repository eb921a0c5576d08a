// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package job orchestrates a full report run: the four extracts in sequence,
// stats collection, report rendering and delivery.
package job

// Status is the lifecycle state of one extract within a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// State tracks every extract's status for the current run. The run is
// strictly sequential, so no locking is needed.
type State struct {
	order    []string
	statuses map[string]Status
	reasons  map[string]string
}

// NewState creates run state with every extract pending.
func NewState(ids []string) *State {
	s := &State{
		order:    append([]string(nil), ids...),
		statuses: make(map[string]Status, len(ids)),
		reasons:  make(map[string]string, len(ids)),
	}
	for _, id := range ids {
		s.statuses[id] = StatusPending
	}
	return s
}

// Start marks an extract running. Terminal states never change.
func (s *State) Start(id string) {
	if !s.statuses[id].Terminal() {
		s.statuses[id] = StatusRunning
	}
}

// Succeed marks an extract as completed.
func (s *State) Succeed(id string) {
	if !s.statuses[id].Terminal() {
		s.statuses[id] = StatusSucceeded
	}
}

// Fail marks an extract as failed with a reason.
func (s *State) Fail(id, reason string) {
	if !s.statuses[id].Terminal() {
		s.statuses[id] = StatusFailed
		s.reasons[id] = reason
	}
}

// Status returns the current status of an extract.
func (s *State) Status(id string) Status { return s.statuses[id] }

// Reason returns the failure reason for a failed extract.
func (s *State) Reason(id string) string { return s.reasons[id] }

// FailedCount returns the number of failed extracts.
func (s *State) FailedCount() int {
	n := 0
	for _, st := range s.statuses {
		if st == StatusFailed {
			n++
		}
	}
	return n
}

// Order returns the extract IDs in run order.
func (s *State) Order() []string { return s.order }
