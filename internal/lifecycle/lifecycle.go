// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package lifecycle defines the content item state taxonomy and the static
// transition table between states. Every status change in the system must be
// validated through this package; no handler may invent an edge of its own.
package lifecycle

import "fmt"

// Status is a content item's position in the publishing lifecycle.
type Status string

const (
	StatusTopicIngested   Status = "TOPIC_INGESTED"
	StatusGenerating      Status = "GENERATING"
	StatusDraftReady      Status = "DRAFT_READY"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusScheduled       Status = "SCHEDULED"
	StatusQueued          Status = "QUEUED"
	StatusPublished       Status = "PUBLISHED"
	StatusFailed          Status = "FAILED"
)

// Statuses is the full taxonomy. Any status value outside this set in the
// database is a data-corruption bug, not a recoverable condition.
var Statuses = map[Status]bool{
	StatusTopicIngested:   true,
	StatusGenerating:      true,
	StatusDraftReady:      true,
	StatusPendingApproval: true,
	StatusApproved:        true,
	StatusRejected:        true,
	StatusScheduled:       true,
	StatusQueued:          true,
	StatusPublished:       true,
	StatusFailed:          true,
}

// transitions is the static adjacency map of legal moves.
// SCHEDULED -> PUBLISHED is the due-publisher's fast path; the bulk
// mark-published handler still requires QUEUED. QUEUED -> SCHEDULED is the
// undo edge. PUBLISHED is terminal.
var transitions = map[Status][]Status{
	StatusTopicIngested:   {StatusGenerating, StatusPendingApproval},
	StatusGenerating:      {StatusDraftReady, StatusFailed},
	StatusDraftReady:      {StatusPendingApproval, StatusFailed},
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusFailed},
	StatusApproved:        {StatusScheduled, StatusFailed},
	StatusRejected:        {StatusGenerating, StatusFailed},
	StatusScheduled:       {StatusQueued, StatusFailed, StatusPublished},
	StatusQueued:          {StatusPublished, StatusScheduled, StatusFailed},
	StatusPublished:       {},
	StatusFailed:          {StatusScheduled},
}

// UnknownStateError reports a state value outside the taxonomy.
type UnknownStateError struct {
	State Status
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown state: %s", e.State)
}

// IllegalTransitionError reports a move absent from the transition table.
type IllegalTransitionError struct {
	Current Status
	Target  Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.Current, e.Target)
}

// Validate checks whether moving from current to target is legal. It is pure:
// no I/O and no mutation — the caller applies the new status after a nil
// return. Returns *UnknownStateError if either value is outside the taxonomy,
// *IllegalTransitionError if the edge is not in the table.
func Validate(current, target Status) error {
	if !Statuses[current] {
		return &UnknownStateError{State: current}
	}
	if !Statuses[target] {
		return &UnknownStateError{State: target}
	}
	for _, allowed := range transitions[current] {
		if allowed == target {
			return nil
		}
	}
	return &IllegalTransitionError{Current: current, Target: target}
}

// CanTransition reports whether Validate would succeed for the pair.
func CanTransition(current, target Status) bool {
	return Validate(current, target) == nil
}

// Targets returns a copy of the allowed targets for a state. Used by tests
// and by the stats endpoint to describe the machine.
func Targets(current Status) []Status {
	out := make([]Status, len(transitions[current]))
	copy(out, transitions[current])
	return out
}

// Valid reports whether s is a member of the taxonomy.
func Valid(s Status) bool {
	return Statuses[s]
}
