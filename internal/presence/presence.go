package presence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:employee:"

// Store keeps employee online-status flags in Redis. Callers treat all
// operations as best-effort side effects.
type Store struct {
	client *redis.Client
}

// NewStore builds the presence store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// SetOnline marks an employee as ONLINE.
func (s *Store) SetOnline(ctx context.Context, employeeID string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Set(ctx, key(employeeID), "ONLINE", 0).Err()
}

// SetOffline clears an employee's online flag.
func (s *Store) SetOffline(ctx context.Context, employeeID string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, key(employeeID)).Err()
}

// IsOnline reports whether the employee currently has an online flag.
func (s *Store) IsOnline(ctx context.Context, employeeID string) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, key(employeeID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func key(employeeID string) string {
	return fmt.Sprintf("%s%s", keyPrefix, employeeID)
}
