// Package store provides database access to all raw objects: OAuth tokens
// and the execution log.
package store

import (
	"context"
	"log/slog"

	"github.com/vocalagent/vocalagent/agent"
	"github.com/vocalagent/vocalagent/internal/profile"
)

// Store provides database access through a driver.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{driver: driver, profile: profile}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) UpsertUserToken(ctx context.Context, upsert *UserToken) (*UserToken, error) {
	return s.driver.UpsertUserToken(ctx, upsert)
}

func (s *Store) GetUserToken(ctx context.Context, email string) (*UserToken, error) {
	return s.driver.GetUserToken(ctx, email)
}

func (s *Store) DeleteUserToken(ctx context.Context, email string) error {
	return s.driver.DeleteUserToken(ctx, email)
}

func (s *Store) CreateExecutionLog(ctx context.Context, create *ExecutionLogEntry) (*ExecutionLogEntry, error) {
	return s.driver.CreateExecutionLog(ctx, create)
}

func (s *Store) ListExecutionLogs(ctx context.Context, find *FindExecutionLog) ([]*ExecutionLogEntry, error) {
	return s.driver.ListExecutionLogs(ctx, find)
}

// Record implements agent.ExecutionLog. Logging is fire-and-forget: a
// persistence failure must never fail the user's action, so it is reported
// to slog and swallowed.
func (s *Store) Record(ctx context.Context, actor, action string, phase agent.Phase, payload map[string]any) {
	_, err := s.driver.CreateExecutionLog(ctx, &ExecutionLogEntry{
		Actor:   actor,
		Action:  action,
		Phase:   string(phase),
		Payload: payload,
	})
	if err != nil {
		slog.Error("failed to persist execution log", "actor", actor, "action", action, "phase", phase, "error", err)
	}
}
