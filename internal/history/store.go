// Package history keeps a score per previously entered input and serves
// prefix suggestions ordered by score, so inputs the user keeps coming back
// to surface first.
package history

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"beacon/internal/core/ports"
)

type suggestion struct {
	Input string
	Score float64
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]*suggestion
	log     ports.Log
	logger  *zap.Logger
}

// NewStore builds the store and replays the persisted log into it. A nil
// log gives an in-memory-only store.
func NewStore(log ports.Log, logger *zap.Logger) (*Store, error) {
	s := &Store{
		entries: make(map[string]*suggestion),
		log:     log,
		logger:  logger,
	}
	if log != nil {
		if err := log.Replay(func(input string) { s.bump(input) }); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Record bumps the input's score and appends it to the log. Persistence
// failures degrade to in-memory operation.
func (s *Store) Record(input string) {
	s.bump(input)
	if s.log == nil {
		return
	}
	if err := s.log.Append(input); err != nil {
		s.logger.Debug("history append failed", zap.Error(err))
	}
}

func (s *Store) bump(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[input]; exists {
		e.Score++
		return
	}
	s.entries[input] = &suggestion{Input: input, Score: 1}
}

// Suggest returns at most max previous inputs with the given prefix, highest
// score first, ties broken lexically. The exact input itself is excluded;
// the default options already cover it.
func (s *Store) Suggest(prefix string, max int) []string {
	s.mu.RLock()
	var matches []suggestion
	for _, e := range s.entries {
		if e.Input == prefix {
			continue
		}
		if strings.HasPrefix(strings.ToLower(e.Input), strings.ToLower(prefix)) {
			matches = append(matches, *e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Input < matches[j].Input
	})

	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Input
	}
	return out
}

// Len returns the number of distinct recorded inputs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
