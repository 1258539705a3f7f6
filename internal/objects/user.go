package objects

import "time"

type UserInfo struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	Groups    []string  `json:"groups"`
	CreatedAt time.Time `json:"createdAt"`
}

type GroupInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProfileInfo struct {
	ID            uint   `json:"id"`
	Owner         string `json:"owner"`
	Pic           string `json:"pic"`
	Bio           string `json:"bio"`
	FollowerCount int    `json:"followerCount"`
}
