package engine

import (
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
)

// Outcome is what happened to one requested module
type Outcome string

const (
	OutcomeEnabled        Outcome = "enabled"
	OutcomeAlreadyEnabled Outcome = "already-enabled"
	OutcomeDisabled       Outcome = "disabled"
	OutcomeNotEnabled     Outcome = "not-enabled"
	OutcomePartial        Outcome = "partial"
	OutcomeUpdated        Outcome = "updated"
	OutcomeFailed         Outcome = "failed"
)

// Reason explains why a recorded path was left in place
type Reason string

const (
	// ReasonChanged means the live entry differs from its fingerprint
	ReasonChanged Reason = "changed"
	// ReasonMissing means the entry is already gone
	ReasonMissing Reason = "missing"
	// ReasonBlocked means a directory still holds entries
	ReasonBlocked Reason = "blocked"
	// ReasonFailed means removing an unchanged entry failed
	ReasonFailed Reason = "failed"
)

// Warning reports a recorded path that was not removed
type Warning struct {
	Path   string
	Kind   fingerprint.Kind
	Reason Reason
	Err    error
}

// ModuleResult is the per-module result of a batch operation. Failures of
// one module never stop the others.
type ModuleResult struct {
	Module  string
	Outcome Outcome
	Err     error

	// Created and Removed list paths in the order they were touched
	Created []string
	Removed []string

	Warnings []Warning
}

// Failed reports whether any result is a failure
func Failed(results []ModuleResult) bool {
	for _, r := range results {
		if r.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// ModuleStatus is one row of List
type ModuleStatus struct {
	Name       string
	Enabled    bool
	InRegistry bool
	Owned      int
	Imports    []string

	// Err is set when the registry definition is malformed
	Err error
}

// OwnedPath is one row of OwnedPaths
type OwnedPath struct {
	Module string
	Path   string
	Info   fingerprint.PathInfo
	Status fingerprint.Status
}

// DigestStatus classifies a named source slot
type DigestStatus string

const (
	DigestMatch      DigestStatus = "match"
	DigestMismatch   DigestStatus = "mismatch"
	DigestUnverified DigestStatus = "unverified"
	DigestMissing    DigestStatus = "missing"
)

// SourceDigest is one row of Hash
type SourceDigest struct {
	Name     string
	Slot     string
	Digest   string
	Expected string
	Status   DigestStatus
	Err      error
}
