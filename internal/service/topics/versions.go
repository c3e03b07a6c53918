package topics

import "sync"

// versions orders extraction runs per chat. A run's result is committed
// only when no newer run has committed before it.
type versions struct {
	mu        sync.Mutex
	issued    map[string]uint64
	committed map[string]uint64
}

func newVersions() *versions {
	return &versions{
		issued:    make(map[string]uint64),
		committed: make(map[string]uint64),
	}
}

func (v *versions) next(chatID string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.issued[chatID]++
	return v.issued[chatID]
}

// commit runs save under the lock if ver is newer than the last committed
// version. The version is recorded only when save succeeds.
func (v *versions) commit(chatID string, ver uint64, save func() error) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if ver <= v.committed[chatID] {
		return false, nil
	}
	if err := save(); err != nil {
		return false, err
	}
	v.committed[chatID] = ver
	return true, nil
}
