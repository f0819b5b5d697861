package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/mailsift/mailsift/internal/mail"
)

// EvaluateCondition tests one compiled condition against one message. Pure:
// the clock is injected, nothing is mutated. Conditions reaching here have
// already passed Compile, so an unknown field indicates a record the store
// handed back in a shape the compiler never saw; that surfaces as *EvalError
// for the caller to log and skip, never as a silent non-match.
func EvaluateCondition(msg mail.Message, cond CompiledCondition, now time.Time) (bool, error) {
	if cond.Field == FieldReceived {
		return evaluateDate(msg.Received, cond, now)
	}
	value, err := stringField(msg, cond.Field)
	if err != nil {
		return false, err
	}
	return evaluateString(value, cond)
}

func stringField(msg mail.Message, f Field) (string, error) {
	switch f {
	case FieldFrom:
		return msg.From, nil
	case FieldTo:
		return msg.To, nil
	case FieldSubject:
		return msg.Subject, nil
	case FieldMessage:
		return msg.Body, nil
	default:
		return "", &EvalError{Field: f, Err: ErrUnknownField}
	}
}

// String comparison is case-insensitive across the whole predicate family,
// so "Contains newsletter" matches "Weekly NEWSLETTER digest".
func evaluateString(fieldValue string, cond CompiledCondition) (bool, error) {
	have := strings.ToLower(fieldValue)
	want := strings.ToLower(cond.Value)
	switch cond.Predicate {
	case PredContains:
		return strings.Contains(have, want), nil
	case PredDoesNotContain:
		return !strings.Contains(have, want), nil
	case PredEquals:
		return have == want, nil
	case PredDoesNotEqual:
		return have != want, nil
	default:
		return false, &EvalError{Field: cond.Field, Err: fmt.Errorf("%w: %q", ErrPredicateMismatch, cond.Predicate)}
	}
}

// Date predicates read as "received less/more than <window> ago": Less than
// means the message arrived inside the window (more recent than now-window),
// Greater than means it is older.
func evaluateDate(received time.Time, cond CompiledCondition, now time.Time) (bool, error) {
	cutoff := now.Add(-cond.Window)
	switch cond.Predicate {
	case PredLessThan:
		return received.After(cutoff), nil
	case PredGreaterThan:
		return received.Before(cutoff), nil
	default:
		return false, &EvalError{Field: cond.Field, Err: fmt.Errorf("%w: %q", ErrPredicateMismatch, cond.Predicate)}
	}
}

// Match evaluates a rule against a message. Every condition is evaluated, in
// rule order, even once the All/Any outcome is already decided: conditions
// are side-effect free, and full evaluation keeps ConditionHits complete and
// deterministic for match reporting.
func Match(msg mail.Message, rule CompiledRule, now time.Time) (MatchResult, error) {
	hits := make([]bool, len(rule.Conditions))
	for i, cond := range rule.Conditions {
		ok, err := EvaluateCondition(msg, cond, now)
		if err != nil {
			return MatchResult{}, err
		}
		hits[i] = ok
	}

	matched := rule.Logic == LogicAll
	for _, hit := range hits {
		if rule.Logic == LogicAll {
			matched = matched && hit
		} else {
			matched = matched || hit
		}
	}
	return MatchResult{Matched: matched, ConditionHits: hits}, nil
}
