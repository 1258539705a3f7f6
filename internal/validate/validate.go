// Package validate holds the resource invariant validators run before a
// create or update is committed. Validators are pure checks over draft
// rows (plus whatever related rows the caller loaded); they never touch
// storage themselves, so the same checks guard both full updates and
// incremental association changes.
package validate

import (
	"errors"
	"strings"
)

// Violations is the error type carrying every invariant failure found in
// one validation pass. A nil/empty Violations means the draft is valid.
type Violations []string

func (v Violations) Error() string {
	return strings.Join(v, "; ")
}

// Messages returns the individual violation messages.
func (v Violations) Messages() []string {
	return []string(v)
}

// AsViolations unwraps err into Violations when it is one.
func AsViolations(err error) (Violations, bool) {
	var v Violations
	if errors.As(err, &v) {
		return v, true
	}

	return nil, false
}

// orNil converts an accumulated list to an error, keeping the nil
// interface when no violation was recorded.
func orNil(v Violations) error {
	if len(v) == 0 {
		return nil
	}

	return v
}
