package model

import (
	"time"
)

type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeFailed    OutcomeKind = "failed"
)

// PlatformState is a state of the per platform publish state machine.
type PlatformState string

const (
	StatePending     PlatformState = "pending"
	StateBuilding    PlatformState = "building"
	StateBuildFailed PlatformState = "build-failed"
	StateBuilt       PlatformState = "built"
	StatePublishing  PlatformState = "publishing"
	StateSucceeded   PlatformState = "succeeded"
	StateFailed      PlatformState = "failed"
	StateSkipped     PlatformState = "skipped"
)

// PublishedRef identifies an artifact created by a collaborator.
type PublishedRef struct {
	ID  string `json:"id,omitempty" yaml:"id,omitempty"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

type PublishOutcome struct {
	Platform  PlatformID    `json:"platform" yaml:"platform"`
	Kind      OutcomeKind   `json:"outcome" yaml:"outcome"`
	State     PlatformState `json:"state" yaml:"state"`
	Reference *PublishedRef `json:"reference,omitempty" yaml:"reference,omitempty"`
	Reason    string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Error is the text of Err, kept for serialization.
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Err      error         `json:"-" yaml:"-"`
	Variant  *Variant      `json:"variant,omitempty" yaml:"variant,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

func Succeeded(platform PlatformID, ref *PublishedRef, variant *Variant) PublishOutcome {
	return PublishOutcome{
		Platform:  platform,
		Kind:      OutcomeSucceeded,
		State:     StateSucceeded,
		Reference: ref,
		Variant:   variant,
	}
}

func Skipped(platform PlatformID, reason string) PublishOutcome {
	return PublishOutcome{
		Platform: platform,
		Kind:     OutcomeSkipped,
		State:    StateSkipped,
		Reason:   reason,
	}
}

// Failed returns a failed outcome, state being the state in which the
// platform stopped (StateBuildFailed or StateFailed).
func Failed(platform PlatformID, state PlatformState, err error) PublishOutcome {
	outcome := PublishOutcome{
		Platform: platform,
		Kind:     OutcomeFailed,
		State:    state,
		Err:      err,
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome
}
