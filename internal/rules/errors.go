package rules

import (
	"errors"
	"fmt"
)

// Sentinel configuration errors. All of these surface from Compile or Load
// before any message is processed; none occur per message.
var (
	// ErrUnknownField indicates a condition names a field the engine does not extract.
	ErrUnknownField = errors.New("unknown condition field")

	// ErrPredicateMismatch indicates a predicate applied to the wrong field type class.
	ErrPredicateMismatch = errors.New("predicate not valid for field")

	// ErrUnknownLogic indicates a rule logic operator other than All/Any.
	ErrUnknownLogic = errors.New("unknown rule logic operator")

	// ErrNoConditions indicates a rule with an empty condition list.
	ErrNoConditions = errors.New("rule has no conditions")

	// ErrNoActions indicates a rule with an empty action list.
	ErrNoActions = errors.New("rule has no actions")

	// ErrUnknownAction indicates an unrecognized action type.
	ErrUnknownAction = errors.New("unknown action type")

	// ErrBadActionValue indicates an action value of the wrong type.
	ErrBadActionValue = errors.New("invalid action value")

	// ErrEmptyLabel indicates a move_message action without a destination label.
	ErrEmptyLabel = errors.New("move_message requires a non-empty label")

	// ErrBadDuration indicates an unparseable relative duration value.
	ErrBadDuration = errors.New("invalid relative duration")
)

// ConfigError wraps a sentinel with the offending rule's position so load
// failures point at the rules file, not the engine.
type ConfigError struct {
	Rule int // zero-based index into the rules file
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Rule, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// EvalError reports a per-message evaluation failure. Non-fatal: the engine
// logs it, skips the rule for that message, and keeps going.
type EvalError struct {
	Field Field
	Err   error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate field %q: %v", e.Field, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
