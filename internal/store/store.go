// Package store keeps the in-memory expense snapshot the pipeline
// reads from. Each user has one ordered snapshot plus a revision
// counter; every mutation bumps the revision, so derived views cached
// under user:revision can never serve stale data.
package store

import (
	"strconv"
	"sync"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

type snapshot struct {
	expenses []domain.Expense
	revision uint64
}

// ExpenseStore holds per-user snapshots. Mutations are applied only
// after the upstream expense service has confirmed the change; the
// service layer owns that sequencing, the store just applies it.
type ExpenseStore struct {
	mu    sync.RWMutex
	users map[string]*snapshot
}

func NewExpenseStore() *ExpenseStore {
	return &ExpenseStore{users: make(map[string]*snapshot)}
}

// Snapshot returns a copy of the user's expenses in store order plus
// the current revision. Callers may reorder or filter the copy freely.
func (s *ExpenseStore) Snapshot(userID string) ([]domain.Expense, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.users[userID]
	if !ok {
		return nil, 0
	}
	out := make([]domain.Expense, len(snap.expenses))
	copy(out, snap.expenses)
	return out, snap.revision
}

// Revision returns the user's current revision without copying data.
func (s *ExpenseStore) Revision(userID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.users[userID]; ok {
		return snap.revision
	}
	return 0
}

// VersionKey builds the cache key prefix for derived views of the
// user's current snapshot.
func (s *ExpenseStore) VersionKey(userID string) string {
	return userID + ":" + strconv.FormatUint(s.Revision(userID), 10)
}

// Replace swaps in a freshly fetched snapshot. A refetch that brings
// back the identical list is not a mutation: the revision stays put,
// so derived views cached under it remain valid.
func (s *ExpenseStore) Replace(userID string, expenses []domain.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.user(userID)
	if snap.revision > 0 && equalExpenses(snap.expenses, expenses) {
		return
	}
	snap.expenses = make([]domain.Expense, len(expenses))
	copy(snap.expenses, expenses)
	snap.revision++
}

func equalExpenses(a, b []domain.Expense) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Prepend inserts a newly created expense at the head of the snapshot.
func (s *ExpenseStore) Prepend(userID string, e domain.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.user(userID)
	snap.expenses = append([]domain.Expense{e}, snap.expenses...)
	snap.revision++
}

// Update replaces the expense with the same ID in place, preserving
// its position. Reports whether the ID was present.
func (s *ExpenseStore) Update(userID string, e domain.Expense) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.user(userID)
	for i := range snap.expenses {
		if snap.expenses[i].ID == e.ID {
			snap.expenses[i] = e
			snap.revision++
			return true
		}
	}
	return false
}

// Remove deletes the expense with the given ID. Reports whether the
// ID was present.
func (s *ExpenseStore) Remove(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.user(userID)
	for i := range snap.expenses {
		if snap.expenses[i].ID == id {
			snap.expenses = append(snap.expenses[:i], snap.expenses[i+1:]...)
			snap.revision++
			return true
		}
	}
	return false
}

// caller must hold s.mu
func (s *ExpenseStore) user(userID string) *snapshot {
	snap, ok := s.users[userID]
	if !ok {
		snap = &snapshot{}
		s.users[userID] = snap
	}
	return snap
}
