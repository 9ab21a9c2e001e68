package chatclient

// PresenceTracker reduces the server's presence events to a single
// boolean. Presence is exactly what the server last reported: unknown
// (session start, after a disconnect) is offline, never assumed online.
type PresenceTracker struct {
	online bool
}

// Apply records the server's latest report.
func (p *PresenceTracker) Apply(online bool) {
	p.online = online
}

// Reset returns the tracker to offline. Called on disconnect, since no
// further presence updates will arrive.
func (p *PresenceTracker) Reset() {
	p.online = false
}

// Online reports the last known counterpart state.
func (p *PresenceTracker) Online() bool {
	return p.online
}
