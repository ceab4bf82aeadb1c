package memory

import (
	"sync"
	"time"

	"agent-sim-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache

	// Simulation-id index, so the engine's status callback never has to
	// read session fields that the dispatcher mutates under the session
	// lock. Save is always called with that lock held, which makes the
	// SimulationID read here safe.
	mu      sync.RWMutex
	bySim   map[string]string // simulation id -> session id
	simByID map[string]string // session id -> last indexed simulation id
}

func NewSessionRepository() *SessionRepository {
	// Sessions idle for an hour are dropped; the purge sweep runs every
	// ten minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache:   c,
		bySim:   make(map[string]string),
		simByID: make(map[string]string),
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.simByID[session.ID]; ok && prev != session.SimulationID {
		delete(r.bySim, prev)
	}
	if session.SimulationID != "" {
		r.bySim[session.SimulationID] = session.ID
		r.simByID[session.ID] = session.SimulationID
	} else {
		delete(r.simByID, session.ID)
	}
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// FindBySimulationID locates the session that started a given simulation.
// Used by the engine's status callback, which only knows the simulation id.
func (r *SessionRepository) FindBySimulationID(simulationID string) (*store.Session, bool) {
	r.mu.RLock()
	sessionID, ok := r.bySim[simulationID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	sess, found := r.Get(sessionID)
	if !found {
		// The session was evicted; drop its stale index entries.
		r.mu.Lock()
		delete(r.bySim, simulationID)
		delete(r.simByID, sessionID)
		r.mu.Unlock()
		return nil, false
	}
	return sess, true
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if sim, ok := r.simByID[sessionID]; ok {
		delete(r.bySim, sim)
		delete(r.simByID, sessionID)
	}
}
