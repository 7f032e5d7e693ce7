// Package store keeps the provider's appointments in process memory.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

var (
	ErrDuplicateID       = errors.New("appointment id already exists")
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TransitionError reports a rejected status change. It matches ErrInvalidTransition.
type TransitionError struct {
	ID   string
	From model.Status
	To   model.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("appointment %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Store is safe for concurrent use. Appointments are kept in insertion order
// and are never removed.
type Store struct {
	mu    sync.RWMutex
	items []model.Appointment
	index map[string]int
}

// New returns a store seeded with appts. Seed entries with a duplicate id are rejected.
func New(seed ...model.Appointment) (*Store, error) {
	s := &Store{index: make(map[string]int, len(seed))}
	for _, a := range seed {
		if err := s.Add(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// List returns a copy of every appointment in insertion order.
func (s *Store) List() []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Appointment(nil), s.items...)
}

func (s *Store) Get(id string) (model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Appointment{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return s.items[i], nil
}

func (s *Store) Add(appt model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[appt.ID]; ok {
		return fmt.Errorf("add %s: %w", appt.ID, ErrDuplicateID)
	}
	s.index[appt.ID] = len(s.items)
	s.items = append(s.items, appt)
	return nil
}

// UpdateStatus moves a pending appointment to next and returns the updated
// record. Check and write happen under one lock, so of two racing calls on
// the same id only one succeeds.
func (s *Store) UpdateStatus(id string, next model.Status) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return model.Appointment{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	cur := s.items[i].Status
	if !cur.CanTransitionTo(next) {
		return model.Appointment{}, &TransitionError{ID: id, From: cur, To: next}
	}
	s.items[i].Status = next
	return s.items[i], nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports errors caused by the current state rather than the request itself.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateID) || errors.Is(err, ErrInvalidTransition)
}
