package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
)

// submitGuardTTL bounds how long a submission can hold the in-flight guard
// before a retry is allowed again.
const submitGuardTTL = 30 * time.Second

// Store keeps wizard snapshots in redis for the lifetime of the open booking
// drawer. Deleting a session is the cancel path; expiry is the abandoned
// drawer. Nothing here ever reaches durable storage.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(id string) string      { return "bsess:" + id }
func guardKey(id string) string { return "bsess:submitting:" + id }

// Create stores a fresh wizard and returns its session id.
func (s *Store) Create(ctx context.Context, w *domain.Wizard) (string, error) {
	id := uuid.New().String()
	if err := s.save(ctx, id, w); err != nil {
		return "", err
	}
	return id, nil
}

// Get loads the wizard snapshot. An expired or unknown session maps to
// ErrSessionExpired.
func (s *Store) Get(ctx context.Context, id string) (*domain.Wizard, error) {
	val, err := s.client.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	var w domain.Wizard
	if err := json.Unmarshal(val, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Save persists a mutated snapshot and refreshes the drawer TTL.
func (s *Store) Save(ctx context.Context, id string, w *domain.Wizard) error {
	return s.save(ctx, id, w)
}

func (s *Store) save(ctx context.Context, id string, w *domain.Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(id), data, s.ttl).Err()
}

// Delete discards all accumulated state. No draft persistence.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, key(id), guardKey(id)).Err()
}

// BeginSubmit takes the in-flight guard. The second caller before EndSubmit
// (or guard expiry) gets false, suppressing duplicate reservation rows from
// rapid double submits.
func (s *Store) BeginSubmit(ctx context.Context, id string) (bool, error) {
	res := s.client.SetNX(ctx, guardKey(id), "1", submitGuardTTL)
	return res.Val(), res.Err()
}

// EndSubmit releases the guard after the submission settles.
func (s *Store) EndSubmit(ctx context.Context, id string) error {
	return s.client.Del(ctx, guardKey(id)).Err()
}
