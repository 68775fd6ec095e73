package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"signs-study-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Sessions live in a local map; Redis holds a liveness marker per session
// whose TTL is refreshed on every read. A session whose marker expired is
// treated as abandoned and dropped.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	if err := s.client.Set(context.Background(), s.key(session.ID()), session.UserID(), s.ttl).Err(); err != nil {
		log.Printf("mark session %s: %v", session.ID(), err)
	}
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	alive, err := s.touch(context.Background(), id)
	if err != nil {
		// Redis unavailable: keep serving from the local map.
		return session, true
	}
	if !alive {
		s.Delete(id)
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) touch(ctx context.Context, id string) (bool, error) {
	if s.ttl <= 0 {
		n, err := s.client.Exists(ctx, s.key(id)).Result()
		return n > 0, err
	}
	return s.client.Expire(ctx, s.key(id), s.ttl).Result()
}

func (s *SessionStore) key(id string) string {
	return "study:session:" + id
}
