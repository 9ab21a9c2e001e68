package constants

import "time"

const (
	// CHANNEL_SIZE is the buffer size of hub and per-connection channels.
	CHANNEL_SIZE = 100

	// HISTORY_PAGE_SIZE caps a single REST history page.
	HISTORY_PAGE_SIZE = 200

	// WRITE_WAIT is the deadline for a single websocket write.
	WRITE_WAIT = 10 * time.Second

	// PONG_WAIT is how long a server connection may stay silent.
	PONG_WAIT = 60 * time.Second

	// PING_PERIOD must be shorter than PONG_WAIT.
	PING_PERIOD = 50 * time.Second

	// REFRESH_TOKEN_EXPIRY_HOURS is the refresh token lifetime, 7 days.
	REFRESH_TOKEN_EXPIRY_HOURS = 168
)
