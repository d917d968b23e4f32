package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
)

// Snapshots keeps one JSON document per namespace under dir:
// memories_<agent>.json and personality_<agent>.json.
type Snapshots struct {
	dir     string
	agentID string
	mu      sync.RWMutex
}

func NewSnapshots(dir, agentID string) (*Snapshots, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &Snapshots{dir: dir, agentID: agentID}, nil
}

func (s *Snapshots) memoriesPath() string {
	return filepath.Join(s.dir, "memories_"+s.agentID+".json")
}

func (s *Snapshots) personalityPath() string {
	return filepath.Join(s.dir, "personality_"+s.agentID+".json")
}

func (s *Snapshots) LoadMemories(ctx context.Context) ([]core.Memory, error) {
	var memories []core.Memory
	found, err := s.read(ctx, s.memoriesPath(), &memories)
	if err != nil || !found {
		return nil, err
	}
	return memories, nil
}

func (s *Snapshots) SaveMemories(ctx context.Context, memories []core.Memory) error {
	if memories == nil {
		memories = []core.Memory{}
	}
	return s.write(s.memoriesPath(), memories)
}

func (s *Snapshots) LoadPersonality(ctx context.Context) (*core.AgentPersonality, error) {
	var p core.AgentPersonality
	found, err := s.read(ctx, s.personalityPath(), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (s *Snapshots) SavePersonality(ctx context.Context, p core.AgentPersonality) error {
	return s.write(s.personalityPath(), p)
}

func (s *Snapshots) Close() error {
	return nil
}

func (s *Snapshots) read(ctx context.Context, path string, v any) (bool, error) {
	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()

	if err != nil {
		if os.IsNotExist(err) {
			log.FromCtx(ctx).Debug().Str("path", path).Msg("snapshot not found")
			return false, nil
		}
		return false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse snapshot %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// write replaces the file through a rename so a crash never leaves half a snapshot.
func (s *Snapshots) write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
