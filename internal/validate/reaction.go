package validate

import (
	"github.com/DavidSemke/TechstackApi/internal/models"
)

// Reaction validates a reaction draft. The target post, or target comment
// along with its post, must be loaded on the draft. Uniqueness of
// (owner, target) is pre-checked by the service and enforced again by the
// storage layer's unique indexes at commit time.
func Reaction(reaction *models.Reaction) error {
	var v Violations

	if !reaction.Type.Valid() {
		v = append(v, "Reaction type must be Like or Dislike.")
	}

	if reaction.TargetsPost() == reaction.TargetsComment() {
		v = append(v, "A reaction must target exactly one post or comment.")
		return v
	}

	switch {
	case reaction.TargetsPost():
		if reaction.Post == nil || !reaction.Post.Published() {
			v = append(v, "A reaction cannot target a private post.")
		}
	case reaction.TargetsComment():
		if reaction.Comment == nil || reaction.Comment.Post == nil || !reaction.Comment.Post.Published() {
			v = append(v, "A reaction cannot target a comment of a private post.")
		}
	}

	return orNil(v)
}
