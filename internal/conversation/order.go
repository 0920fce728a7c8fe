// ABOUTME: Deterministic total order for the published conversation list
// ABOUTME: Stable sort keeps server-relative order for ties and unmessaged chats

package conversation

import "sort"

// Order sorts convs in place: conversations with a last message come first,
// newest first; conversations without one keep their server-relative order
// at the end. Equal timestamps also keep server order (stable sort).
func Order(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i].LastMessage, convs[j].LastMessage
		switch {
		case a != nil && b != nil:
			return a.CreatedAt.After(b.CreatedAt)
		case a != nil:
			return true
		default:
			return false
		}
	})
}
