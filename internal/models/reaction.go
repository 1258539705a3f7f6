package models

import (
	"time"
)

// ReactionType is stored as a single-letter code.
type ReactionType string

const (
	ReactionLike    ReactionType = "L"
	ReactionDislike ReactionType = "D"
)

// Valid reports whether the code is a known reaction type.
func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// Display returns the human-readable name of the reaction type.
func (t ReactionType) Display() string {
	switch t {
	case ReactionLike:
		return "Like"
	case ReactionDislike:
		return "Dislike"
	default:
		return string(t)
	}
}

// Reaction records one like or dislike by a user on exactly one target:
// either a post or a comment, never both. The check constraint enforces
// target exclusivity and the partial unique indexes enforce at most one
// reaction per (owner, target), atomically at commit time.
type Reaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	OwnerID   uint         `gorm:"not null;uniqueIndex:uniq_reaction_owner_post;uniqueIndex:uniq_reaction_owner_comment" json:"owner_id"`
	Owner     *User        `gorm:"constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Type      ReactionType `gorm:"size:1;not null;check:type IN ('L','D')" json:"type"`
	PostID    *uint        `gorm:"uniqueIndex:uniq_reaction_owner_post;check:chk_reaction_one_target,(post_id IS NULL) <> (comment_id IS NULL)" json:"post_id"`
	Post      *Post        `gorm:"constraint:OnDelete:CASCADE" json:"post,omitempty"`
	CommentID *uint        `gorm:"uniqueIndex:uniq_reaction_owner_comment" json:"comment_id"`
	Comment   *Comment     `gorm:"constraint:OnDelete:CASCADE" json:"comment,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// TargetsPost reports whether the reaction targets a post.
func (r *Reaction) TargetsPost() bool {
	return r.PostID != nil
}

// TargetsComment reports whether the reaction targets a comment.
func (r *Reaction) TargetsComment() bool {
	return r.CommentID != nil
}
