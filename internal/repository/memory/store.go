// Package memory provides an in-process implementation of the repository
// contracts backed by maps. It reproduces the one property of the durable
// store that admission correctness depends on: a per-household row lock held
// for the duration of a unit of work. Used by concurrency tests and by dev
// setups without Postgres.
package memory

import (
	"sync"

	"household-finance-be/internal/entity"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	households  map[uuid.UUID]entity.Household
	memberships map[uuid.UUID]entity.HouseholdMembership
	invitations map[uuid.UUID]entity.Invitation
	messages    []entity.ChatMessage
	users       map[uuid.UUID]entity.User
	prefs       map[uuid.UUID]entity.NotificationPreference

	// rowLocks emulate SELECT ... FOR UPDATE per household.
	rowLocksMu sync.Mutex
	rowLocks   map[uuid.UUID]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		households:  make(map[uuid.UUID]entity.Household),
		memberships: make(map[uuid.UUID]entity.HouseholdMembership),
		invitations: make(map[uuid.UUID]entity.Invitation),
		users:       make(map[uuid.UUID]entity.User),
		prefs:       make(map[uuid.UUID]entity.NotificationPreference),
		rowLocks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Store) rowLock(id uuid.UUID) *sync.Mutex {
	s.rowLocksMu.Lock()
	defer s.rowLocksMu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}
