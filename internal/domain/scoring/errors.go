package scoring

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownGrade    = errors.New("unknown grade")
	ErrInvalidStatLine = errors.New("invalid stat line")
)

// UnknownGradeError reports a grade name the tier rule table cannot
// classify. Classification never falls back to a default tier; a silent
// misclassification would corrupt scoring fairness.
type UnknownGradeError struct {
	Grade string
}

func (e *UnknownGradeError) Error() string {
	return fmt.Sprintf("unknown grade %q", e.Grade)
}

func (e *UnknownGradeError) Unwrap() error { return ErrUnknownGrade }

// InvalidStatLineError reports a stat line that fails validation. The
// record is rejected and reported; the rest of the batch continues.
type InvalidStatLineError struct {
	Field  string
	Reason string
}

func (e *InvalidStatLineError) Error() string {
	return fmt.Sprintf("invalid stat line: %s %s", e.Field, e.Reason)
}

func (e *InvalidStatLineError) Unwrap() error { return ErrInvalidStatLine }
