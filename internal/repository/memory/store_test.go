package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"household-finance-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowLockHeldUntilCommit(t *testing.T) {
	store := NewStore()
	factory := NewRepositoryFactory(store)
	ctx := context.Background()

	household := entity.Household{Id: uuid.New(), Name: "Locked", MaxUsers: 5}
	seed := factory.NewUnitOfWork(ctx)
	require.NoError(t, seed.HouseholdRepository().Create(ctx, &household))

	first := factory.NewUnitOfWork(ctx)
	require.NoError(t, first.Begin(ctx))
	locked, err := first.HouseholdRepository().LockById(ctx, household.Id)
	require.NoError(t, err)
	require.NotNil(t, locked)

	acquired := make(chan struct{})
	go func() {
		second := factory.NewUnitOfWork(ctx)
		if err := second.Begin(ctx); err != nil {
			t.Error(err)
			return
		}
		if _, err := second.HouseholdRepository().LockById(ctx, household.Id); err != nil {
			t.Error(err)
			return
		}
		close(acquired)
		second.Commit()
	}()

	select {
	case <-acquired:
		t.Fatal("second unit of work acquired the row lock while the first still held it")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, first.Commit())

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second unit of work never acquired the row lock after commit")
	}
}

func TestRowLockReleasedOnRollback(t *testing.T) {
	store := NewStore()
	factory := NewRepositoryFactory(store)
	ctx := context.Background()

	household := entity.Household{Id: uuid.New(), Name: "Rolled", MaxUsers: 5}
	seed := factory.NewUnitOfWork(ctx)
	require.NoError(t, seed.HouseholdRepository().Create(ctx, &household))

	first := factory.NewUnitOfWork(ctx)
	require.NoError(t, first.Begin(ctx))
	_, err := first.HouseholdRepository().LockById(ctx, household.Id)
	require.NoError(t, err)
	require.NoError(t, first.Rollback())

	second := factory.NewUnitOfWork(ctx)
	require.NoError(t, second.Begin(ctx))
	locked, err := second.HouseholdRepository().LockById(ctx, household.Id)
	require.NoError(t, err)
	require.NotNil(t, locked)
	require.NoError(t, second.Commit())
}

func TestRowLockReentrantWithinTransaction(t *testing.T) {
	store := NewStore()
	factory := NewRepositoryFactory(store)
	ctx := context.Background()

	household := entity.Household{Id: uuid.New(), Name: "Twice", MaxUsers: 5}
	seed := factory.NewUnitOfWork(ctx)
	require.NoError(t, seed.HouseholdRepository().Create(ctx, &household))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.HouseholdRepository().LockById(ctx, household.Id)
	require.NoError(t, err)
	_, err = uow.HouseholdRepository().LockById(ctx, household.Id)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
}

func TestLockByIdOutsideTransaction(t *testing.T) {
	store := NewStore()
	factory := NewRepositoryFactory(store)
	ctx := context.Background()

	household := entity.Household{Id: uuid.New(), Name: "Plain", MaxUsers: 5}
	seed := factory.NewUnitOfWork(ctx)
	require.NoError(t, seed.HouseholdRepository().Create(ctx, &household))

	// Outside a transaction the lock is not retained, so back-to-back reads
	// on the same unit of work do not deadlock.
	uow := factory.NewUnitOfWork(ctx)
	for i := 0; i < 2; i++ {
		locked, err := uow.HouseholdRepository().LockById(ctx, household.Id)
		require.NoError(t, err)
		require.NotNil(t, locked)
	}
}

func TestMembershipDuplicateRejected(t *testing.T) {
	store := NewStore()
	factory := NewRepositoryFactory(store)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	householdId := uuid.New()
	userId := uuid.New()

	first := entity.HouseholdMembership{Id: uuid.New(), HouseholdId: householdId, UserId: userId, Role: entity.MembershipRoleMember, Active: true}
	require.NoError(t, uow.MembershipRepository().Create(ctx, &first))

	dup := entity.HouseholdMembership{Id: uuid.New(), HouseholdId: householdId, UserId: userId, Role: entity.MembershipRoleMember, Active: true}
	assert.Error(t, uow.MembershipRepository().Create(ctx, &dup))
}

func TestFindRecentByRoomTrimsToLimit(t *testing.T) {
	store := NewStore()
	factory := NewRepositoryFactory(store)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	roomId := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		msg := entity.ChatMessage{
			Id:        uuid.New(),
			RoomKind:  entity.RoomKindChat,
			RoomId:    roomId,
			UserId:    uuid.New(),
			Text:      fmt.Sprintf("m%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, &msg))
	}

	// Another room's traffic must not leak in.
	other := entity.ChatMessage{Id: uuid.New(), RoomKind: entity.RoomKindChat, RoomId: uuid.New(), UserId: uuid.New(), Text: "elsewhere"}
	require.NoError(t, uow.ChatMessageRepository().Create(ctx, &other))

	recent, err := uow.ChatMessageRepository().FindRecentByRoom(ctx, entity.RoomKindChat, roomId, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "m4", recent[0].Text)
	assert.Equal(t, "m5", recent[1].Text)
	assert.Equal(t, "m6", recent[2].Text)
}

func TestPreferenceDefaultsWhenAbsent(t *testing.T) {
	store := NewStore()
	factory := NewRepositoryFactory(store)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	pref, err := uow.NotificationPreferenceRepository().GetByUserId(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, pref.ChatEmailEnabled)
	assert.Empty(t, pref.MutedRooms)
}
