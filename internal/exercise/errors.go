package exercise

import (
	"errors"
	"fmt"
)

var ErrMaxStepsExceeded = errors.New("max steps exceeded (possible hint cycle)")

// DefinitionError reports a malformed exercise definition. It is fatal for
// that definition only.
type DefinitionError struct {
	ExerciseTypeID string
	StepID         string
	Reason         string
}

func (e *DefinitionError) Error() string {
	msg := "invalid exercise definition"
	if e.ExerciseTypeID != "" {
		msg += fmt.Sprintf(" %q", e.ExerciseTypeID)
	}
	if e.StepID != "" {
		msg += fmt.Sprintf(" at step %q", e.StepID)
	}
	return msg + ": " + e.Reason
}

func definitionErrorf(exerciseTypeID, stepID, format string, args ...any) *DefinitionError {
	return &DefinitionError{
		ExerciseTypeID: exerciseTypeID,
		StepID:         stepID,
		Reason:         fmt.Sprintf(format, args...),
	}
}

// InvalidTransitionError means a trigger was fired from a state that does
// not offer it.
type InvalidTransitionError struct {
	State   string
	Trigger string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("trigger %q is not available from state %q", e.Trigger, e.State)
}

func IsDefinitionError(err error) bool {
	var defErr *DefinitionError
	return errors.As(err, &defErr)
}
