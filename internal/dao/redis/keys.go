package redis

import "fmt"

// Key builders. Centralised so every module spells keys the same way.

// PresenceKey is the set of user ids currently connected to a thread.
func PresenceKey(threadId string) string {
	return fmt.Sprintf("presence:thread:%s", threadId)
}

// RefreshTokenKey stores the active refresh token id for a user.
func RefreshTokenKey(userId string) string {
	return fmt.Sprintf("auth:refresh:%s", userId)
}

// ThreadLastMessageKey caches the latest message JSON of a thread for
// cheap conversation-list rendering.
func ThreadLastMessageKey(threadId string) string {
	return fmt.Sprintf("thread:last_message:%s", threadId)
}
