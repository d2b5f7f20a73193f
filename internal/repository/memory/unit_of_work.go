package memory

import (
	"context"
	"fmt"
	"sync"

	"household-finance-be/internal/repository/contract"
	"household-finance-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Factory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork implements the transactional surface over the in-memory store.
// Data writes apply immediately; what it faithfully reproduces is the lock
// discipline: row locks taken via LockById are held until Commit/Rollback,
// which is exactly what serializes concurrent admissions.
type UnitOfWork struct {
	store *Store
	inTx  bool

	heldMu sync.Mutex
	held   map[uuid.UUID]*sync.Mutex
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.inTx = true
	u.held = make(map[uuid.UUID]*sync.Mutex)
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.releaseLocks()
	u.inTx = false
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.releaseLocks()
	u.inTx = false
	return nil
}

func (u *UnitOfWork) releaseLocks() {
	u.heldMu.Lock()
	defer u.heldMu.Unlock()
	for _, l := range u.held {
		l.Unlock()
	}
	u.held = nil
}

// acquireRowLock blocks until the per-household lock is held. Outside a
// transaction the lock is not retained (a plain read).
func (u *UnitOfWork) acquireRowLock(id uuid.UUID) func() {
	l := u.store.rowLock(id)
	if !u.inTx {
		l.Lock()
		return l.Unlock
	}

	u.heldMu.Lock()
	_, already := u.held[id]
	u.heldMu.Unlock()
	if already {
		return func() {}
	}

	l.Lock()
	u.heldMu.Lock()
	u.held[id] = l
	u.heldMu.Unlock()
	return func() {}
}

func (u *UnitOfWork) HouseholdRepository() contract.HouseholdRepository {
	return &householdRepository{uow: u}
}

func (u *UnitOfWork) MembershipRepository() contract.MembershipRepository {
	return &membershipRepository{uow: u}
}

func (u *UnitOfWork) InvitationRepository() contract.InvitationRepository {
	return &invitationRepository{uow: u}
}

func (u *UnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &chatMessageRepository{uow: u}
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{uow: u}
}

func (u *UnitOfWork) NotificationPreferenceRepository() contract.NotificationPreferenceRepository {
	return &preferenceRepository{uow: u}
}
