package rules

import "fmt"

// Validation is all-up-front: every condition and action of every rule is
// checked here so a broken rules file aborts the run before any message is
// touched. Evaluation never revisits these checks.

func isStringField(f Field) bool {
	switch f {
	case FieldFrom, FieldTo, FieldSubject, FieldMessage:
		return true
	default:
		return false
	}
}

func isStringPredicate(p Predicate) bool {
	switch p {
	case PredContains, PredDoesNotContain, PredEquals, PredDoesNotEqual:
		return true
	default:
		return false
	}
}

func isDatePredicate(p Predicate) bool {
	return p == PredLessThan || p == PredGreaterThan
}

// Compile validates a loaded rule set and pre-processes it for evaluation.
// Any failure is a *ConfigError wrapping one of the sentinel errors.
func Compile(ruleSet []Rule) ([]CompiledRule, error) {
	compiled := make([]CompiledRule, 0, len(ruleSet))
	for i, rule := range ruleSet {
		cr, err := compileRule(i, rule)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

func compileRule(idx int, rule Rule) (CompiledRule, error) {
	fail := func(err error) (CompiledRule, error) {
		return CompiledRule{}, &ConfigError{Rule: idx, Err: err}
	}

	if rule.Logic != LogicAll && rule.Logic != LogicAny {
		return fail(fmt.Errorf("%w: %q", ErrUnknownLogic, rule.Logic))
	}
	if len(rule.Conditions) == 0 {
		return fail(ErrNoConditions)
	}
	if len(rule.Actions) == 0 {
		return fail(ErrNoActions)
	}

	cr := CompiledRule{
		Index:      idx,
		Logic:      rule.Logic,
		Conditions: make([]CompiledCondition, 0, len(rule.Conditions)),
		Actions:    make([]CompiledAction, 0, len(rule.Actions)),
	}

	for _, cond := range rule.Conditions {
		cc, err := compileCondition(cond)
		if err != nil {
			return fail(err)
		}
		cr.Conditions = append(cr.Conditions, cc)
	}
	for _, act := range rule.Actions {
		ca, err := compileAction(act)
		if err != nil {
			return fail(err)
		}
		cr.Actions = append(cr.Actions, ca)
	}
	return cr, nil
}

func compileCondition(cond Condition) (CompiledCondition, error) {
	cc := CompiledCondition{
		Field:     cond.Field,
		Predicate: cond.Predicate,
		Value:     cond.Value,
	}
	switch {
	case isStringField(cond.Field):
		if !isStringPredicate(cond.Predicate) {
			return CompiledCondition{}, fmt.Errorf(
				"%w: %q on string field %q", ErrPredicateMismatch, cond.Predicate, cond.Field)
		}
	case cond.Field == FieldReceived:
		if !isDatePredicate(cond.Predicate) {
			return CompiledCondition{}, fmt.Errorf(
				"%w: %q on date field %q", ErrPredicateMismatch, cond.Predicate, cond.Field)
		}
		window, err := ParseRelativeDuration(cond.Value)
		if err != nil {
			return CompiledCondition{}, err
		}
		cc.Window = window
	default:
		return CompiledCondition{}, fmt.Errorf("%w: %q", ErrUnknownField, cond.Field)
	}
	return cc, nil
}

func compileAction(act Action) (CompiledAction, error) {
	switch act.Type {
	case ActionMarkRead:
		// mark_read carries an explicit boolean; value=false funnels to the
		// same primitive as mark_unread.
		read, ok := act.Value.(bool)
		if !ok {
			return CompiledAction{}, fmt.Errorf("%w: mark_read wants a boolean", ErrBadActionValue)
		}
		return CompiledAction{Type: ActionMarkRead, Read: read}, nil
	case ActionMarkUnread:
		// mark_unread ignores any value field.
		return CompiledAction{Type: ActionMarkUnread, Read: false}, nil
	case ActionMoveMessage:
		label, ok := act.Value.(string)
		if !ok {
			return CompiledAction{}, fmt.Errorf("%w: move_message wants a string label", ErrBadActionValue)
		}
		if label == "" {
			return CompiledAction{}, ErrEmptyLabel
		}
		return CompiledAction{Type: ActionMoveMessage, Label: label}, nil
	default:
		return CompiledAction{}, fmt.Errorf("%w: %q", ErrUnknownAction, act.Type)
	}
}
