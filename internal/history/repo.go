package history

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/risk"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/utils"
)

// NotFoundError is returned when no history exists for an agent.
type NotFoundError struct {
	message string
}

func (e *NotFoundError) Error() string {
	return e.message
}

// NewNotFoundError creates a NotFoundError for key.
func NewNotFoundError(key string) *NotFoundError {
	return &NotFoundError{message: "history not found: " + key}
}

// Snapshot is an agent's risk at one data refresh.
type Snapshot struct {
	At        time.Time  `json:"at"`
	RiskScore int        `json:"riskScore"`
	RiskLevel risk.Level `json:"riskLevel"`
	Signals   []string   `json:"signals"`
}

// NewSnapshot condenses a profile.
func NewSnapshot(p risk.Profile, at time.Time) Snapshot {
	signals := make([]string, 0, len(p.Signals))
	for _, s := range p.Signals {
		signals = append(signals, s.Name)
	}
	return Snapshot{
		At:        at,
		RiskScore: p.RiskScore,
		RiskLevel: p.RiskLevel,
		Signals:   signals,
	}
}

// Key identifies an agent's history: the roster id, or the lowercased name
// when the roster carries no id.
func Key(p risk.Profile) string {
	if p.AgentID != "" {
		return p.AgentID
	}
	return strings.ToLower(strings.TrimSpace(p.AgentName))
}

// Repository keeps the latest snapshots of every scored agent in memory.
// Each agent gets a ring buffer of fixed length; agents not refreshed within
// ttl are dropped by Serve. Repository is safe for concurrent use.
//
//	repo := history.NewRepository(30, 30*24*time.Hour)
//	go repo.Serve(ctx, time.Minute)
//	repo.Record(profile, time.Now())
type Repository struct {
	length int
	ttl    time.Duration

	entries map[string]*utils.RingBuffer[Snapshot]
	updates map[string]time.Time
	mu      sync.RWMutex

	now func() time.Time
}

// NewRepository creates a repository keeping length snapshots per agent.
func NewRepository(length int, ttl time.Duration) *Repository {
	return &Repository{
		length:  length,
		ttl:     ttl,
		entries: make(map[string]*utils.RingBuffer[Snapshot]),
		updates: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Append adds a snapshot to the buffer of key, creating it on first use.
func (r *Repository) Append(key string, s Snapshot) {
	r.push(key, s)
}

// Record appends the snapshot of a freshly computed profile and returns the
// agent's previous snapshot, if any.
func (r *Repository) Record(p risk.Profile, at time.Time) (Snapshot, bool) {
	key := Key(p)
	if key == "" {
		return Snapshot{}, false
	}
	return r.push(key, NewSnapshot(p, at))
}

func (r *Repository) push(key string, s Snapshot) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buffer, found := r.entries[key]
	if !found {
		buffer = utils.NewRingBuffer[Snapshot](r.length)
		r.entries[key] = buffer
	}
	r.updates[key] = r.now()

	previous, ok := buffer.Last()
	buffer.Push(s)
	return previous, ok
}

// Get returns the snapshots of key, oldest first.
func (r *Repository) Get(key string) ([]Snapshot, error) {
	r.mu.RLock()
	buffer, found := r.entries[key]
	r.mu.RUnlock()
	if !found {
		return nil, NewNotFoundError(key)
	}
	return buffer.ToSlice(), nil
}

// Len returns the number of agents with history.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Evict drops agents whose last update is older than ttl and returns how
// many were removed. A zero ttl disables eviction.
func (r *Repository) Evict() int {
	if r.ttl <= 0 {
		return 0
	}

	var outdated []string
	r.mu.RLock()
	now := r.now()
	for key, ts := range r.updates {
		if now.Sub(ts) > r.ttl {
			outdated = append(outdated, key)
		}
	}
	r.mu.RUnlock()

	if len(outdated) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for _, key := range outdated {
		// Re-check: the agent may have been refreshed in between.
		if ts, ok := r.updates[key]; ok && now.Sub(ts) > r.ttl {
			delete(r.entries, key)
			delete(r.updates, key)
			removed++
		}
	}
	return removed
}

// Serve evicts stale agents every interval until ctx is done.
func (r *Repository) Serve(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}
