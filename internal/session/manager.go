package session

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/scoundrel/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Manager hands out one live Session per save slot, loading it on first use
// and dropping it again once it has sat idle.
type Manager struct {
	store   store.Store
	log     *logrus.Entry
	seed    uint64
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*managed

	loads singleflight.Group
}

type managed struct {
	sess     *Session
	lastUsed time.Time
}

// NewManager builds a manager over st. A non-zero seed fixes the shuffle seed
// of every new game; zero draws one from crypto/rand per session. Sessions
// unused for idleTTL become eligible for eviction; zero keeps them forever.
func NewManager(st store.Store, log *logrus.Logger, seed uint64, idleTTL time.Duration) *Manager {
	return &Manager{
		store:    st,
		log:      log.WithField("component", "session"),
		seed:     seed,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*managed),
	}
}

// Get returns the live session for slot, loading it from the store if needed.
// Concurrent first requests for one slot share a single load, and loads of
// different slots do not wait on each other.
func (m *Manager) Get(ctx context.Context, slot string) (*Session, error) {
	if s := m.lookup(slot); s != nil {
		return s, nil
	}
	v, err, _ := m.loads.Do(slot, func() (any, error) {
		if s := m.lookup(slot); s != nil {
			return s, nil
		}
		seed, err := m.nextSeed()
		if err != nil {
			return nil, err
		}
		// Waiters share this load, so one caller giving up must not fail them all.
		s, err := Load(context.WithoutCancel(ctx), slot, m.store, seed, m.log)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[slot] = &managed{sess: s, lastUsed: m.now()}
		m.mu.Unlock()
		m.log.WithFields(logrus.Fields{"slot": slot, "session": s.ID}).Info("session opened")
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// lookup returns the cached session for slot and marks it used.
func (m *Manager) lookup(slot string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[slot]
	if !ok {
		return nil
	}
	e.lastUsed = m.now()
	return e.sess
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle drops sessions unused for the idle TTL that have no subscribers,
// no action in flight and no failed save pending. An evicted slot resumes
// from the store on its next Get.
func (m *Manager) EvictIdle() int {
	if m.idleTTL <= 0 {
		return 0
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for slot, e := range m.sessions {
		if now.Sub(e.lastUsed) < m.idleTTL || e.sess.Subscribers() > 0 {
			continue
		}
		if !e.sess.mu.TryLock() {
			continue
		}
		unsaved := e.sess.unsaved
		e.sess.mu.Unlock()
		if unsaved {
			continue
		}
		delete(m.sessions, slot)
		evicted++
		m.log.WithFields(logrus.Fields{"slot": slot, "session": e.sess.ID}).Debug("session evicted")
	}
	return evicted
}

// Run calls EvictIdle every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.EvictIdle(); n > 0 {
				m.log.WithFields(logrus.Fields{"evicted": n, "live": m.Len()}).Info("idle sessions evicted")
			}
		}
	}
}

func (m *Manager) nextSeed() (uint64, error) {
	if m.seed != 0 {
		return m.seed, nil
	}
	return NewSeed()
}

// NewSeed generates a shuffle seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
