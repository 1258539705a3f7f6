package authz

import (
	"fmt"
	"strings"
)

// Rule is one node of the policy expression tree. Atomic rules are pure
// predicates over (identity, action, owner); AND/OR/NOT nodes compose them.
// Rules never touch storage and never carry state, so every policy entry
// can be evaluated and printed in isolation.
type Rule interface {
	// Eval decides the predicate. ownerID is the owner column of the
	// target row; nil for collection-level actions or ownerless rows.
	Eval(id Identity, act Action, ownerID *uint) bool

	// String renders the node for policy inspection.
	String() string
}

type predicate struct {
	name string
	fn   func(id Identity, act Action, ownerID *uint) bool
}

func (p predicate) Eval(id Identity, act Action, ownerID *uint) bool {
	return p.fn(id, act, ownerID)
}

func (p predicate) String() string { return p.name }

// Atomic predicates.
var (
	// Everyone allows any identity, including anonymous.
	Everyone Rule = predicate{
		name: "everyone",
		fn: func(Identity, Action, *uint) bool {
			return true
		},
	}

	// Authenticated requires a signed-in user.
	Authenticated Rule = predicate{
		name: "authenticated",
		fn: func(id Identity, _ Action, _ *uint) bool {
			return id.Authenticated()
		},
	}

	// Admin requires the administrator flag.
	Admin Rule = predicate{
		name: "admin",
		fn: func(id Identity, _ Action, _ *uint) bool {
			return id.Authenticated() && id.IsAdmin
		},
	}

	// Owner requires the identity to own the target row.
	Owner Rule = predicate{
		name: "owner",
		fn: func(id Identity, _ Action, ownerID *uint) bool {
			return id.Owns(ownerID)
		},
	}

	// ReadOnly allows safe (read/list) actions for anyone.
	ReadOnly Rule = predicate{
		name: "read_only",
		fn: func(_ Identity, act Action, _ *uint) bool {
			return act.Safe()
		},
	}
)

// Role requires membership in the named role group.
func Role(name string) Rule {
	return predicate{
		name: fmt.Sprintf("role(%s)", name),
		fn: func(id Identity, _ Action, _ *uint) bool {
			return id.HasRole(name)
		},
	}
}

type andRule struct{ rules []Rule }

func (r andRule) Eval(id Identity, act Action, ownerID *uint) bool {
	for _, rule := range r.rules {
		if !rule.Eval(id, act, ownerID) {
			return false
		}
	}

	return true
}

func (r andRule) String() string { return combine("AND", r.rules) }

type orRule struct{ rules []Rule }

func (r orRule) Eval(id Identity, act Action, ownerID *uint) bool {
	for _, rule := range r.rules {
		if rule.Eval(id, act, ownerID) {
			return true
		}
	}

	return false
}

func (r orRule) String() string { return combine("OR", r.rules) }

type notRule struct{ rule Rule }

func (r notRule) Eval(id Identity, act Action, ownerID *uint) bool {
	return !r.rule.Eval(id, act, ownerID)
}

func (r notRule) String() string {
	return fmt.Sprintf("NOT %s", r.rule.String())
}

// And composes rules conjunctively. Short-circuits on first failure.
func And(rules ...Rule) Rule {
	return andRule{rules: rules}
}

// Or composes rules disjunctively. Short-circuits on first success.
func Or(rules ...Rule) Rule {
	return orRule{rules: rules}
}

// Not negates a rule.
func Not(rule Rule) Rule {
	return notRule{rule: rule}
}

func combine(op string, rules []Rule) string {
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		parts = append(parts, r.String())
	}

	return "(" + strings.Join(parts, " "+op+" ") + ")"
}
