package models

import (
	"time"
)

// Tag labels posts. Titles are unique, lowercase, and at most five tags
// attach to any post.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:20;uniqueIndex;not null" json:"title"`
}

// Post is an article owned by a user. A nil PublishDate marks the post as
// a private draft: invisible to everyone but its owner. The owner column
// survives account deletion as NULL so published work is not lost.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OwnerID     *uint      `json:"owner_id"`
	Owner       *User      `gorm:"constraint:OnDelete:SET NULL" json:"owner,omitempty"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Thumbnail   string     `json:"thumbnail"`
	PublishDate *time.Time `json:"publish_date"`
	Content     string     `gorm:"size:18500" json:"content"`
	Tags        []Tag      `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Published reports whether the post is public.
func (p *Post) Published() bool {
	return p.PublishDate != nil
}

// Comment is attached to exactly one post, optionally replying to another
// comment on the same post. Reply depth is capped at one level.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   *uint     `json:"owner_id"`
	Owner     *User     `gorm:"constraint:OnDelete:SET NULL" json:"owner,omitempty"`
	PostID    uint      `gorm:"not null" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"post,omitempty"`
	Content   string    `gorm:"size:300;not null" json:"content"`
	ReplyToID *uint     `json:"reply_to_id"`
	ReplyTo   *Comment  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// IsReply reports whether the comment replies to another comment.
func (c *Comment) IsReply() bool {
	return c.ReplyToID != nil
}
