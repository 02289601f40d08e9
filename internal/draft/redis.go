package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 20 * time.Minute

// RedisStore keeps drafts and confirmations as JSON values that expire after
// ttl, so abandoned bookings clean themselves up.
type RedisStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) SetCurrentBooking(ctx context.Context, sessionID string, draft domain.BookingDraft) error {
	return s.set(ctx, draftKey(sessionID), draft)
}

func (s *RedisStore) GetCurrentBooking(ctx context.Context, sessionID string) (*domain.BookingDraft, error) {
	data, err := s.redis.Get(ctx, draftKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get booking draft for session %s: %w", sessionID, err)
	}

	return decode[domain.BookingDraft](data)
}

func (s *RedisStore) ClearCurrentBooking(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, draftKey(sessionID)).Err()
}

func (s *RedisStore) HasCurrentBooking(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.redis.Exists(ctx, draftKey(sessionID)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (s *RedisStore) TakeCurrentBooking(ctx context.Context, sessionID string) (*domain.BookingDraft, error) {
	data, err := s.redis.GetDel(ctx, draftKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to take booking draft for session %s: %w", sessionID, err)
	}

	return decode[domain.BookingDraft](data)
}

func (s *RedisStore) RestoreCurrentBooking(ctx context.Context, sessionID string, draft domain.BookingDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	return s.redis.SetNX(ctx, draftKey(sessionID), data, s.ttl).Err()
}

func (s *RedisStore) SetLastConfirmedBooking(ctx context.Context, sessionID string, confirmation domain.BookingConfirmation) error {
	return s.set(ctx, confirmationKey(sessionID), confirmation)
}

func (s *RedisStore) GetLastConfirmedBooking(ctx context.Context, sessionID string) (*domain.BookingConfirmation, error) {
	data, err := s.redis.Get(ctx, confirmationKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking confirmation for session %s: %w", sessionID, err)
	}

	return decode[domain.BookingConfirmation](data)
}

func (s *RedisStore) ClearLastConfirmedBooking(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, confirmationKey(sessionID)).Err()
}

func (s *RedisStore) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.redis.Set(ctx, key, data, s.ttl).Err()
}

func decode[T any](data []byte) (*T, error) {
	var v T

	err := json.Unmarshal(data, &v)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}

	return &v, nil
}
