package models

import "time"

// RunOutcome classifies a journaled task invocation.
type RunOutcome string

const (
	// RunOutcomeContinue - the callback asked to run again
	RunOutcomeContinue RunOutcome = "continue"
	// RunOutcomeTerminate - the callback retired the task
	RunOutcomeTerminate RunOutcome = "terminate"
	// RunOutcomeError - the callback failed; the task retired
	RunOutcomeError RunOutcome = "error"
)

// TaskRun is one journaled task invocation.
type TaskRun struct {
	ID       int64
	Task     string
	Started  time.Time
	Duration time.Duration
	Outcome  RunOutcome
	Error    string
}
