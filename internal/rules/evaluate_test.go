package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mailsift/mailsift/internal/mail"
)

func testMessage() mail.Message {
	return mail.Message{
		ID:       "msg-1",
		From:     "weekly-newsletter@x.com",
		To:       "me@example.com",
		Subject:  "Your weekly digest",
		Body:     "This week in tech...",
		Received: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Read:     false,
	}
}

func mustCompileCondition(t *testing.T, cond Condition) CompiledCondition {
	t.Helper()
	cc, err := compileCondition(cond)
	if err != nil {
		t.Fatalf("compile condition: %v", err)
	}
	return cc
}

func TestEvaluateStringConditions(t *testing.T) {
	msg := testMessage()
	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"contains", Condition{FieldFrom, PredContains, "newsletter"}, true},
		{"contains-case-insensitive", Condition{FieldFrom, PredContains, "NEWSLETTER"}, true},
		{"contains-miss", Condition{FieldFrom, PredContains, "billing"}, false},
		{"does-not-contain", Condition{FieldFrom, PredDoesNotContain, "billing"}, true},
		{"does-not-contain-hit", Condition{FieldFrom, PredDoesNotContain, "newsletter"}, false},
		{"equals", Condition{FieldTo, PredEquals, "ME@example.com"}, true},
		{"equals-miss", Condition{FieldTo, PredEquals, "someone@example.com"}, false},
		{"does-not-equal", Condition{FieldSubject, PredDoesNotEqual, "spam"}, true},
		{"body-contains", Condition{FieldMessage, PredContains, "this week"}, true},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			cc := mustCompileCondition(t, tc.cond)
			got, err := EvaluateCondition(msg, cc, time.Now())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %t want %t", got, tc.want)
			}
		})
	}
}

func TestEvaluateDateConditions(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		received time.Time
		cond     Condition
		want     bool
	}{
		{
			// 5 days ago, inside the 7-day window
			name:     "less-than-recent",
			received: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			cond:     Condition{FieldReceived, PredLessThan, "7 days"},
			want:     true,
		},
		{
			name:     "less-than-old",
			received: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			cond:     Condition{FieldReceived, PredLessThan, "7 days"},
			want:     false,
		},
		{
			// older than 2 months (60 days)
			name:     "greater-than-old",
			received: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			cond:     Condition{FieldReceived, PredGreaterThan, "2 months"},
			want:     true,
		},
		{
			name:     "greater-than-recent",
			received: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			cond:     Condition{FieldReceived, PredGreaterThan, "2 months"},
			want:     false,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			msg := testMessage()
			msg.Received = tc.received
			cc := mustCompileCondition(t, tc.cond)
			got, err := EvaluateCondition(msg, cc, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %t want %t", got, tc.want)
			}
		})
	}
}

func TestEvaluateUnknownFieldIsError(t *testing.T) {
	cc := CompiledCondition{Field: "Header", Predicate: PredContains, Value: "x"}
	_, err := EvaluateCondition(testMessage(), cc, time.Now())
	if err == nil {
		t.Fatalf("expected error, not a silent non-match")
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("want *EvalError, got %T", err)
	}
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
}

// Contains and DoesNotContain must be exact logical negations for any
// (message, value) pair.
func TestContainsNegationProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("DoesNotContain == !Contains", prop.ForAll(
		func(fieldValue, condValue string) bool {
			msg := testMessage()
			msg.Subject = fieldValue
			contains := CompiledCondition{Field: FieldSubject, Predicate: PredContains, Value: condValue}
			negated := CompiledCondition{Field: FieldSubject, Predicate: PredDoesNotContain, Value: condValue}
			a, err1 := EvaluateCondition(msg, contains, time.Now())
			b, err2 := EvaluateCondition(msg, negated, time.Now())
			return err1 == nil && err2 == nil && a == !b
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestMatchTruthTable(t *testing.T) {
	// Conditions chosen so hit/miss is controlled per case: c1 tests From,
	// c2 tests Subject.
	hit1 := Condition{FieldFrom, PredContains, "newsletter"}
	miss1 := Condition{FieldFrom, PredContains, "billing"}
	hit2 := Condition{FieldSubject, PredContains, "weekly"}
	miss2 := Condition{FieldSubject, PredContains, "invoice"}

	tests := []struct {
		name  string
		logic LogicOp
		c1    Condition
		c2    Condition
		want  bool
	}{
		{"all-true-true", LogicAll, hit1, hit2, true},
		{"all-true-false", LogicAll, hit1, miss2, false},
		{"all-false-true", LogicAll, miss1, hit2, false},
		{"all-false-false", LogicAll, miss1, miss2, false},
		{"any-true-true", LogicAny, hit1, hit2, true},
		{"any-true-false", LogicAny, hit1, miss2, true},
		{"any-false-true", LogicAny, miss1, hit2, true},
		{"any-false-false", LogicAny, miss1, miss2, false},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			compiled, err := Compile([]Rule{{
				Logic:      tc.logic,
				Conditions: []Condition{tc.c1, tc.c2},
				Actions:    []Action{{Type: ActionMarkUnread}},
			}})
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			result, err := Match(testMessage(), compiled[0], time.Now())
			if err != nil {
				t.Fatalf("match: %v", err)
			}
			if result.Matched != tc.want {
				t.Fatalf("got %t want %t", result.Matched, tc.want)
			}
		})
	}
}

func TestMatchReportsEveryCondition(t *testing.T) {
	// An Any rule whose first condition already matches must still evaluate
	// and report the rest, in rule order.
	compiled, err := Compile([]Rule{{
		Logic: LogicAny,
		Conditions: []Condition{
			{FieldFrom, PredContains, "newsletter"},
			{FieldSubject, PredContains, "invoice"},
			{FieldSubject, PredContains, "weekly"},
		},
		Actions: []Action{{Type: ActionMarkUnread}},
	}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	result, err := Match(testMessage(), compiled[0], time.Now())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !result.Matched {
		t.Fatalf("expected match")
	}
	want := []bool{true, false, true}
	if len(result.ConditionHits) != len(want) {
		t.Fatalf("hit count: got %d want %d", len(result.ConditionHits), len(want))
	}
	for i, hit := range want {
		if result.ConditionHits[i] != hit {
			t.Fatalf("condition %d: got %t want %t", i, result.ConditionHits[i], hit)
		}
	}
}
