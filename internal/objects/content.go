package objects

import "time"

type TagInfo struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type PostInfo struct {
	ID           uint       `json:"id"`
	Owner        string     `json:"owner"`
	Title        string     `json:"title"`
	Thumbnail    string     `json:"thumbnail"`
	PublishDate  *time.Time `json:"publishDate"`
	LastModified time.Time  `json:"lastModified"`
	Content      string     `json:"content"`
	Tags         []string   `json:"tags"`
	LikeCount    int64      `json:"likeCount"`
	DislikeCount int64      `json:"dislikeCount"`
}

type CommentInfo struct {
	ID           uint      `json:"id"`
	Owner        string    `json:"owner"`
	PostID       uint      `json:"postID"`
	ReplyToID    *uint     `json:"replyToID"`
	Content      string    `json:"content"`
	CreateDate   time.Time `json:"createDate"`
	LikeCount    int64     `json:"likeCount"`
	DislikeCount int64     `json:"dislikeCount"`
}

// ReactionInfo exposes the target as (targetType, targetID) instead of
// raw nullable foreign keys.
type ReactionInfo struct {
	ID         uint      `json:"id"`
	Owner      string    `json:"owner"`
	Type       string    `json:"type"`
	TargetType string    `json:"targetType"`
	TargetID   uint      `json:"targetID"`
	CreateDate time.Time `json:"createDate"`
}
