package store

import (
	"context"
	"fmt"
	"sync"

	"blink-builder-sol/internal/types"
)

type voteKey struct {
	candidate string
	title     string
}

type listingKey struct {
	mint   types.Pubkey
	seller types.Pubkey
}

// MemoryStore 进程内实现，所有 compare-and-set 在同一把锁内完成
type MemoryStore struct {
	mu       sync.Mutex
	votes    map[voteKey][]string
	listings map[listingKey]Listing
	wagers   map[string]Wager
	configs  map[string]DisplayConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		votes:    make(map[voteKey][]string),
		listings: make(map[listingKey]Listing),
		wagers:   make(map[string]Wager),
		configs:  make(map[string]DisplayConfig),
	}
}

func (m *MemoryStore) Voters(ctx context.Context, candidate, title string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	voters := m.votes[voteKey{candidate, title}]
	return append([]string(nil), voters...), nil
}

func (m *MemoryStore) AddVoter(ctx context.Context, candidate, title, voter string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := voteKey{candidate, title}
	for _, v := range m.votes[key] {
		if v == voter {
			return false, nil
		}
	}
	m.votes[key] = append(m.votes[key], voter)
	return true, nil
}

func (m *MemoryStore) PutListing(ctx context.Context, l *Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listingKey{l.Mint, l.Seller}] = *l
	return nil
}

func (m *MemoryStore) GetListing(ctx context.Context, mint, seller types.Pubkey) (*Listing, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[listingKey{mint, seller}]
	if !ok {
		return nil, false, nil
	}
	return &l, true, nil
}

func (m *MemoryStore) DeleteListing(ctx context.Context, mint, seller types.Pubkey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, listingKey{mint, seller})
	return nil
}

func (m *MemoryStore) CreateWager(ctx context.Context, w *Wager) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.wagers[w.ID]; exists {
		return fmt.Errorf("wager %s already exists", w.ID)
	}
	m.wagers[w.ID] = *w
	return nil
}

func (m *MemoryStore) GetWager(ctx context.Context, id string) (*Wager, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wagers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (m *MemoryStore) SetChallenger(ctx context.Context, id string, challenger types.Pubkey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wagers[id]
	if !ok {
		return false, ErrNotFound
	}
	if w.Taken() {
		return false, nil
	}
	w.Challenger = challenger
	m.wagers[id] = w
	return true, nil
}

func (m *MemoryStore) GetConfig(ctx context.Context, template string) (*DisplayConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[template]
	if !ok {
		return nil, ErrNotFound
	}
	cfg.Amounts = append([]string(nil), cfg.Amounts...)
	return &cfg, nil
}

func (m *MemoryStore) SaveConfig(ctx context.Context, template string, cfg *DisplayConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *cfg
	saved.Amounts = append([]string(nil), cfg.Amounts...)
	m.configs[template] = saved
	return nil
}
