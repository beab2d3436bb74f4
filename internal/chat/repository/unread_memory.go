package repository

import (
	"context"
	"sort"
	"sync"
)

type unreadKey struct {
	channelID int64
	userID    int64
}

type memoryUnreadIndex struct {
	mu   sync.Mutex
	sets map[unreadKey]map[int64]struct{}
}

// NewMemoryUnreadIndex create a single process UnreadIndex, used by tests and local runs
func NewMemoryUnreadIndex() UnreadIndex {
	return &memoryUnreadIndex{sets: make(map[unreadKey]map[int64]struct{})}
}

func (m *memoryUnreadIndex) MarkUnread(_ context.Context, channelID, messageID int64, members []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range members {
		k := unreadKey{channelID, u}
		if m.sets[k] == nil {
			m.sets[k] = make(map[int64]struct{})
		}
		m.sets[k][messageID] = struct{}{}
	}
	return nil
}

func (m *memoryUnreadIndex) Pending(_ context.Context, channelID, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.sets[unreadKey{channelID, userID}]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memoryUnreadIndex) Acknowledge(_ context.Context, channelID, userID, messageID int64, others []int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	own := unreadKey{channelID, userID}
	if _, ok := m.sets[own][messageID]; !ok {
		return false, nil
	}
	delete(m.sets[own], messageID)
	if len(m.sets[own]) == 0 {
		delete(m.sets, own)
	}

	for _, o := range others {
		if o == userID {
			continue
		}
		if _, ok := m.sets[unreadKey{channelID, o}][messageID]; ok {
			return false, nil
		}
	}
	return true, nil
}
