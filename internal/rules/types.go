// Package rules implements the mailsift rule engine core: condition
// evaluation, All/Any rule matching, and load-time rule compilation.
//
// Rules are authored as JSON (see Load) and validated once per run. String
// comparisons are case-insensitive across the whole Contains/Equals family.
// Date comparisons work on relative durations ("7 days", "2 months") against
// an injected clock; months are a fixed 30 days.
package rules

import "time"

// Field names a message attribute a condition tests.
type Field string

const (
	FieldFrom     Field = "From"
	FieldTo       Field = "To"
	FieldSubject  Field = "Subject"
	FieldMessage  Field = "Message"
	FieldReceived Field = "Received"
)

// Predicate is the comparison operator applied to a field's value. String
// predicates apply to From/To/Subject/Message, date predicates to Received;
// mixing the two classes is a configuration error caught by Compile.
type Predicate string

const (
	PredContains       Predicate = "Contains"
	PredDoesNotContain Predicate = "Does not Contain"
	PredEquals         Predicate = "Equals"
	PredDoesNotEqual   Predicate = "Does not equal"

	PredLessThan    Predicate = "Less than"
	PredGreaterThan Predicate = "Greater than"
)

// LogicOp combines a rule's condition results.
type LogicOp string

const (
	LogicAll LogicOp = "All"
	LogicAny LogicOp = "Any"
)

// ActionType identifies a side-effecting operation on a matched message.
type ActionType string

const (
	ActionMarkRead    ActionType = "mark_read"
	ActionMarkUnread  ActionType = "mark_unread"
	ActionMoveMessage ActionType = "move_message"
)

// Condition is a single field/predicate/value test.
type Condition struct {
	Field     Field     `json:"field"`
	Predicate Predicate `json:"predicate"`
	Value     string    `json:"value"`
}

// Action pairs an action type with its value: bool for mark_read (false
// behaves as mark_unread), destination label for move_message, ignored for
// mark_unread.
type Action struct {
	Type  ActionType `json:"type"`
	Value any        `json:"value,omitempty"`
}

// Rule is one user-authored rule as loaded from the rules file. Conditions
// and actions are ordered and must both be non-empty.
type Rule struct {
	Logic      LogicOp     `json:"predicate"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
}

// CompiledCondition is a validated condition ready for evaluation. For date
// conditions the relative duration is parsed once at compile time.
type CompiledCondition struct {
	Field     Field
	Predicate Predicate
	Value     string
	Window    time.Duration // date conditions only
}

// CompiledAction is a validated action with its value narrowed to the
// concrete type the executor needs.
type CompiledAction struct {
	Type  ActionType
	Read  bool   // mark_read / mark_unread
	Label string // move_message destination
}

// CompiledRule is fully validated and ready for matching.
type CompiledRule struct {
	Index      int // position in the rules file, for logging
	Logic      LogicOp
	Conditions []CompiledCondition
	Actions    []CompiledAction
}

// MatchResult reports one (message, rule) evaluation. ConditionHits preserves
// the rule's condition order so match detail is deterministic.
type MatchResult struct {
	Matched       bool
	ConditionHits []bool
}
