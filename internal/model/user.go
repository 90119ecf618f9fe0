package model

import "strings"

type Role struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

type User struct {
	ID           ID     `json:"id,omitempty"`
	Handle       string `json:"handle"`
	Name         string `json:"name,omitempty"`
	PowerfulRole *Role  `json:"powerful_role,omitempty"`
}

// DisplayName falls back to the handle, then to "Ghost".
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}

	if u.Handle != "" {
		return u.Handle
	}

	return "Ghost"
}

func (u User) Color() string {
	if u.PowerfulRole == nil {
		return ""
	}

	return u.PowerfulRole.Color
}

// Same reports whether both users are the same author. Handles are the
// identity used by the feed, ids are absent on some denormalized records.
func (u User) Same(other User) bool {
	return u.Handle != "" && u.Handle == other.Handle
}
