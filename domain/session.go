// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

// Identity is what the token verifier yields for an accepted credential.
type Identity struct {
	Username string
	Role     string
}

// Session binds one live connection to an authenticated identity and its
// current room. Room is empty while the connection is unjoined; a
// connection occupies at most one room at a time.
type Session struct {
	ConnID   string
	Username string
	Role     string
	Room     string
}
