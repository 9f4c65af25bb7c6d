// Package routine contains the pure core of the automation engine:
// typed errors, schedule parsing, the metadata codec, vision-label
// matching, and input validation. Nothing here performs I/O.
package routine

import "fmt"

// ValidationError reports a user-correctable problem with a routine
// definition. It propagates to the caller of create/update.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid routine: %s %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown routine ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("routine not found: %s", e.ID)
}

// DisabledRoutineError reports an automatic execution attempted on a
// disabled routine. The scheduler never fires disabled routines, so in
// practice this guards against disable/tick races.
type DisabledRoutineError struct {
	ID string
}

func (e *DisabledRoutineError) Error() string {
	return fmt.Sprintf("routine %s is disabled", e.ID)
}
