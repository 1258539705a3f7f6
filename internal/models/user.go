package models

import (
	"time"
)

// User is an account able to authenticate against the API. Role membership
// is carried by the Groups relation; the IsAdmin flag marks administrators
// independently of any group.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254" json:"email"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	Groups    []Group   `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"groups"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupNames returns the user's role names.
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}

	return names
}

// Group is a named role conferring capabilities (author, commenter,
// moderator).
type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

// Profile holds the public-facing details of a user. Exactly one exists
// per user; it is created with the user and removed with the user.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"uniqueIndex;not null" json:"owner_id"`
	Owner     *User     `gorm:"constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Pic       string    `json:"pic"`
	Bio       string    `gorm:"size:300" json:"bio"`
	Followers []User    `gorm:"many2many:profile_followers;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
