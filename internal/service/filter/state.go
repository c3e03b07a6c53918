package filter

import (
	"sort"
	"strings"
	"sync"
)

type Mode int

const (
	Inactive Mode = iota
	Active
)

func (m Mode) String() string {
	if m == Active {
		return "active"
	}
	return "inactive"
}

// Snapshot is an immutable copy of the filter state.
type Snapshot struct {
	ChatID            string
	ActiveTopics      []string
	SimilarityEnabled bool
	Threshold         float64
}

func (s Snapshot) Mode() Mode {
	if s.SimilarityEnabled && len(s.ActiveTopics) > 0 {
		return Active
	}
	return Inactive
}

// State is the per-session topic selection. It is not persisted.
type State struct {
	mu        sync.RWMutex
	chatID    string
	active    map[string]struct{}
	enabled   bool
	threshold float64
}

func NewState(chatID string, enabled bool, threshold float64) *State {
	return &State{
		chatID:    chatID,
		active:    make(map[string]struct{}),
		enabled:   enabled,
		threshold: threshold,
	}
}

// SetActive replaces the active topic set wholesale and returns it sorted.
// Blank labels are dropped.
func (s *State) SetActive(labels []string) []string {
	next := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		next[l] = struct{}{}
	}

	s.mu.Lock()
	s.active = next
	s.mu.Unlock()

	return sortedKeys(next)
}

// SetEnabled toggles similarity mode. Disabling clears the active topics.
func (s *State) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = enabled
	if !enabled {
		s.active = make(map[string]struct{})
	}
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		ChatID:            s.chatID,
		ActiveTopics:      sortedKeys(s.active),
		SimilarityEnabled: s.enabled,
		Threshold:         s.threshold,
	}
}

func (s *State) Mode() Mode {
	return s.Snapshot().Mode()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
