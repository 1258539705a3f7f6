package validate

import (
	"fmt"

	"github.com/DavidSemke/TechstackApi/internal/models"
)

// Post field bounds.
const (
	PostTitleMinLen   = 20
	PostTitleMaxLen   = 100
	PostContentMinLen = 1850
	PostContentMaxLen = 18500

	// PostMinTags/PostMaxTags bound the tag set of a published post; the
	// upper bound holds for drafts too. Enforced both here and at the
	// tag-membership boundary (PostTagCount) so the incremental path
	// cannot bypass it.
	PostMinTags = 1
	PostMaxTags = 5
)

// Post validates a post draft. Tags must be loaded on the draft.
func Post(post *models.Post) error {
	var v Violations

	if len(post.Title) < PostTitleMinLen || len(post.Title) > PostTitleMaxLen {
		v = append(v, fmt.Sprintf(
			"Post title must be between %d and %d characters long.",
			PostTitleMinLen, PostTitleMaxLen,
		))
	}

	if post.Content != "" && (len(post.Content) < PostContentMinLen || len(post.Content) > PostContentMaxLen) {
		v = append(v, fmt.Sprintf(
			"Post content must be between %d and %d characters long.",
			PostContentMinLen, PostContentMaxLen,
		))
	}

	if post.Published() {
		if post.Thumbnail == "" {
			v = append(v, "A published post must have a thumbnail.")
		}

		if post.Content == "" {
			v = append(v, "A published post must have content.")
		}
	}

	if err := PostTagCount(len(post.Tags), post.Published()); err != nil {
		v = append(v, err.(Violations)...)
	}

	return orNil(v)
}

// PostTagCount enforces the tag cardinality bound. It gates both the
// full-update path (via Post) and the incremental tag add/remove path,
// which changes tag membership without re-validating the whole post.
func PostTagCount(count int, published bool) error {
	var v Violations

	if count > PostMaxTags {
		v = append(v, fmt.Sprintf("A post can have at most %d tags.", PostMaxTags))
	}

	if published && count < PostMinTags {
		v = append(v, fmt.Sprintf("A published post must have at least %d tag.", PostMinTags))
	}

	return orNil(v)
}
