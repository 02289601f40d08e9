package draft

import (
	"context"
	"sync"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

// MemoryStore is a Store living in process memory. Entries are lost on restart.
type MemoryStore struct {
	mu            sync.Mutex
	drafts        map[string]domain.BookingDraft
	confirmations map[string]domain.BookingConfirmation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts:        make(map[string]domain.BookingDraft),
		confirmations: make(map[string]domain.BookingConfirmation),
	}
}

func (s *MemoryStore) SetCurrentBooking(_ context.Context, sessionID string, draft domain.BookingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[sessionID] = draft
	return nil
}

func (s *MemoryStore) GetCurrentBooking(_ context.Context, sessionID string) (*domain.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[sessionID]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}

	return &draft, nil
}

func (s *MemoryStore) ClearCurrentBooking(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, sessionID)
	return nil
}

func (s *MemoryStore) HasCurrentBooking(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.drafts[sessionID]
	return ok, nil
}

func (s *MemoryStore) TakeCurrentBooking(_ context.Context, sessionID string) (*domain.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[sessionID]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	delete(s.drafts, sessionID)

	return &draft, nil
}

func (s *MemoryStore) RestoreCurrentBooking(_ context.Context, sessionID string, draft domain.BookingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[sessionID]; !ok {
		s.drafts[sessionID] = draft
	}
	return nil
}

func (s *MemoryStore) SetLastConfirmedBooking(_ context.Context, sessionID string, confirmation domain.BookingConfirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.confirmations[sessionID] = confirmation
	return nil
}

func (s *MemoryStore) GetLastConfirmedBooking(_ context.Context, sessionID string) (*domain.BookingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmation, ok := s.confirmations[sessionID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	return &confirmation, nil
}

func (s *MemoryStore) ClearLastConfirmedBooking(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.confirmations, sessionID)
	return nil
}
