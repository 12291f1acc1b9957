package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLedger keeps all vote records in a single JSON file mapping
// viewerID -> pollID -> optionIndex, written whole on every record.
type FileLedger struct {
	mu   sync.Mutex
	path string
}

// NewFileLedger opens (or creates) the votes file at path.
func NewFileLedger(path string) (*FileLedger, error) {
	l := &FileLedger{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := l.save(map[string]map[string]int{}); err != nil {
			return nil, fmt.Errorf("initialize votes file: %w", err)
		}
	}
	return l, nil
}

func (l *FileLedger) load() (map[string]map[string]int, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]map[string]int{}, nil
		}
		return nil, fmt.Errorf("read votes file: %w", err)
	}
	votes := map[string]map[string]int{}
	if err := json.Unmarshal(raw, &votes); err != nil {
		return nil, fmt.Errorf("parse votes file: %w", err)
	}
	return votes, nil
}

func (l *FileLedger) save(votes map[string]map[string]int) error {
	raw, err := json.MarshalIndent(votes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode votes file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".votes-*.json")
	if err != nil {
		return fmt.Errorf("write votes file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write votes file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write votes file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write votes file: %w", err)
	}
	return nil
}

func (l *FileLedger) Choice(ctx context.Context, viewerID, pollID string) (int, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	votes, err := l.load()
	if err != nil {
		return 0, false, err
	}
	byPoll, ok := votes[viewerID]
	if !ok {
		return 0, false, nil
	}
	idx, ok := byPoll[pollID]
	return idx, ok, nil
}

func (l *FileLedger) Record(ctx context.Context, viewerID, pollID string, optionIndex int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	votes, err := l.load()
	if err != nil {
		return err
	}
	if votes[viewerID] == nil {
		votes[viewerID] = map[string]int{}
	}
	votes[viewerID][pollID] = optionIndex
	return l.save(votes)
}
