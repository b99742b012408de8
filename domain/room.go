package domain

import "github.com/samber/lo"

// Room is a named broadcast destination gated by an allow-list.
// The core only ever reads the allow-list; ownership of the list stays
// with the room store.
type Room struct {
	Name         string
	AllowedUsers []string
}

func (r Room) Allows(username string) bool {
	return lo.Contains(r.AllowedUsers, username)
}
