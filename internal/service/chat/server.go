// Package chat is the real-time messaging core: per-connection pumps,
// the room hub, and the broker layer that feeds it.
package chat

import (
	"auditlink_chat/internal/dao/mysql"
	myredis "auditlink_chat/internal/dao/redis"
)

// ChatServer aggregates the hub and its broker and manages their
// lifecycle as one unit.
type ChatServer struct {
	Hub    *Hub
	broker MessageBroker
	mode   string
}

type ChatServerConfig struct {
	// Mode is "channel" (standalone) or "kafka".
	Mode        string
	ThreadRepo  mysql.ThreadRepository
	MessageRepo mysql.MessageRepository
	UserRepo    mysql.UserRepository
	Cache       myredis.AsyncCacheService
}

func NewChatServer(cfg ChatServerConfig) *ChatServer {
	hub := NewHub(cfg.ThreadRepo, cfg.MessageRepo, cfg.UserRepo, cfg.Cache)

	cs := &ChatServer{Hub: hub, mode: cfg.Mode}
	if cfg.Mode == "kafka" {
		cs.broker = NewKafkaBroker(hub)
	} else {
		cs.broker = NewChannelBroker(hub)
	}
	hub.broker = cs.broker
	return cs
}

// Start blocks running the broker and room loop; run it on its own
// goroutine.
func (cs *ChatServer) Start() {
	cs.broker.Start()
}

func (cs *ChatServer) Close() {
	cs.broker.Close()
}
