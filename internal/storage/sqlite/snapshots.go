package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandevgo/glimpse/internal/core"
)

// Snapshots stores full JSON snapshots in a key/value table, namespaced by agent.
type Snapshots struct {
	db      *sql.DB
	agentID string
}

func NewSnapshots(db *sql.DB, agentID string) *Snapshots {
	return &Snapshots{db: db, agentID: agentID}
}

func (s *Snapshots) memoriesKey() string    { return "memories:" + s.agentID }
func (s *Snapshots) personalityKey() string { return "personality:" + s.agentID }

func (s *Snapshots) LoadMemories(ctx context.Context) ([]core.Memory, error) {
	raw, err := s.get(ctx, s.memoriesKey())
	if err != nil || raw == nil {
		return nil, err
	}

	var memories []core.Memory
	if err := json.Unmarshal(raw, &memories); err != nil {
		return nil, fmt.Errorf("failed to decode memories snapshot: %w", err)
	}
	return memories, nil
}

func (s *Snapshots) SaveMemories(ctx context.Context, memories []core.Memory) error {
	if memories == nil {
		memories = []core.Memory{}
	}
	raw, err := json.Marshal(memories)
	if err != nil {
		return fmt.Errorf("failed to encode memories snapshot: %w", err)
	}
	return s.put(ctx, s.memoriesKey(), raw)
}

func (s *Snapshots) LoadPersonality(ctx context.Context) (*core.AgentPersonality, error) {
	raw, err := s.get(ctx, s.personalityKey())
	if err != nil || raw == nil {
		return nil, err
	}

	var p core.AgentPersonality
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode personality snapshot: %w", err)
	}
	return &p, nil
}

func (s *Snapshots) SavePersonality(ctx context.Context, p core.AgentPersonality) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode personality snapshot: %w", err)
	}
	return s.put(ctx, s.personalityKey(), raw)
}

func (s *Snapshots) Close() error {
	return s.db.Close()
}

func (s *Snapshots) get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", key, err)
	}
	return raw, nil
}

func (s *Snapshots) put(ctx context.Context, key string, raw []byte) error {
	query := `INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", key, err)
	}
	return nil
}
