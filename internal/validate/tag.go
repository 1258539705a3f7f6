package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Tag title bounds. The lower bound of 2 is deliberate: single-character
// tags carry no information and were only ever created by accident.
const (
	TagTitleMinLen = 2
	TagTitleMaxLen = 20
)

var tagTitlePattern = regexp.MustCompile(`^[-0-9A-Za-z]+$`)

// Tag validates a tag title: lowercase, 2-20 characters, alphanumeric and
// hyphens only.
func Tag(title string) error {
	var v Violations

	if len(title) < TagTitleMinLen || len(title) > TagTitleMaxLen {
		v = append(v, fmt.Sprintf(
			"Tag title must be between %d and %d characters long.",
			TagTitleMinLen, TagTitleMaxLen,
		))
	}

	if title != strings.ToLower(title) {
		v = append(v, "Tag title must be lowercase.")
	}

	if title != "" && !tagTitlePattern.MatchString(title) {
		v = append(v, "Tag title must only contain letters, numbers, and hyphens.")
	}

	return orNil(v)
}
