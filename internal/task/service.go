// Package task implements the predefined database tasks and the dispatcher
// that wraps their outcomes in a uniform success/error envelope.
package task

import (
	"context"

	"github.com/sqltoolkit/mysql-agent/internal/config"
	"github.com/sqltoolkit/mysql-agent/internal/db"
)

// ChatFunc answers one natural-language question. Injected by the caller
// so the dispatcher stays independent of the model runtime.
type ChatFunc func(ctx context.Context, message string) (string, error)

// Service holds the connection manager and executes tasks against it.
type Service struct {
	manager *db.Manager
	chat    ChatFunc
}

// NewService creates a task service on top of the connection manager.
func NewService(manager *db.Manager) *Service {
	return &Service{manager: manager}
}

// SetChatFunc wires the natural-language entry point into the chat task.
func (s *Service) SetChatFunc(chat ChatFunc) {
	s.chat = chat
}

// Config returns the current configuration snapshot.
func (s *Service) Config() *config.Config {
	return s.manager.Config()
}

// Reconfigure merges overrides and forces a reconnect on next use.
func (s *Service) Reconfigure(ov *config.Overrides) {
	s.manager.Reconfigure(ov)
}

// Ask dispatches a chat task for the prompt. Convenience over Dispatch;
// the envelope's data is the final model text.
func (s *Service) Ask(ctx context.Context, prompt string) Result {
	return s.Dispatch(ctx, Request{Kind: KindChat, Message: prompt})
}

// Close releases the database connection.
func (s *Service) Close() error {
	return s.manager.Close()
}
