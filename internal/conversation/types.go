// ABOUTME: Wire types for conversations and users as served by the chat API
// ABOUTME: Conversation identity (ID) is the join key across successive fetches

package conversation

import "time"

// User is a chat participant as reported by the server. Read-only from the
// client's perspective.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	ProfilePic  string `json:"profilePic"`
}

// LastMessage is the newest message in a conversation, if any.
type LastMessage struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created"`
}

// Conversation is a chat thread between the current user and one other
// participant. The server snapshot replaces every field on each fetch except
// UnreadCount, which is client-local and joined back in by ID.
type Conversation struct {
	ID          string       `json:"id"`
	User        User         `json:"user"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"-"`
}
