package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSendRejectsBlankText(t *testing.T) {
	factory := newMemoryFactory()
	userId := seedUser(t, factory, "chatter@example.com", "Chatter")
	roomId := uuid.New()

	svc := NewChatService(factory, &captureMailer{}, nopLogger{}, 50)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.Send(context.Background(), userId, entity.RoomKindChat, roomId, text, nil)
		var validation *ValidationError
		require.ErrorAs(t, err, &validation, "text %q", text)
	}

	// Nothing was persisted.
	uow := factory.NewUnitOfWork(context.Background())
	count, err := uow.ChatMessageRepository().Count(context.Background(),
		specification.ByRoom{Kind: string(entity.RoomKindChat), RoomID: roomId},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestChatSendPersistsMessage(t *testing.T) {
	factory := newMemoryFactory()
	userId := seedUser(t, factory, "chatter@example.com", "Chatter")
	roomId := uuid.New()
	parentId := uuid.New()

	svc := NewChatService(factory, &captureMailer{}, nopLogger{}, 50)

	res, err := svc.Send(context.Background(), userId, entity.RoomKindChat, roomId, "hello there", &parentId)
	require.NoError(t, err)
	assert.Equal(t, "hello there", res.Text)
	assert.Equal(t, "chat", res.RoomType)
	assert.Equal(t, roomId, res.RoomId)
	assert.Equal(t, userId, res.User.Id)
	assert.Equal(t, "Chatter", res.User.FullName)
	require.NotNil(t, res.ParentId)
	assert.Equal(t, parentId, *res.ParentId)

	uow := factory.NewUnitOfWork(context.Background())
	count, err := uow.ChatMessageRepository().Count(context.Background(),
		specification.ByRoom{Kind: string(entity.RoomKindChat), RoomID: roomId},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestChatHistoryReturnsLastMessagesOldestFirst(t *testing.T) {
	factory := newMemoryFactory()
	userId := seedUser(t, factory, "chatter@example.com", "Chatter")
	roomId := uuid.New()

	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 8; i++ {
		msg := entity.ChatMessage{
			Id:        uuid.New(),
			RoomKind:  entity.RoomKindChat,
			RoomId:    roomId,
			UserId:    userId,
			Text:      fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, &msg))
	}

	svc := NewChatService(factory, &captureMailer{}, nopLogger{}, 5)

	history, err := svc.History(ctx, entity.RoomKindChat, roomId)
	require.NoError(t, err)
	require.Len(t, history.Messages, 5)
	for i, m := range history.Messages {
		assert.Equal(t, fmt.Sprintf("message %d", i+3), m.Text)
		assert.Equal(t, "Chatter", m.User.FullName)
	}
}

func TestChatHistoryEmptyRoom(t *testing.T) {
	factory := newMemoryFactory()
	svc := NewChatService(factory, &captureMailer{}, nopLogger{}, 50)

	history, err := svc.History(context.Background(), entity.RoomKindChat, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestNotifyOfflineHonorsPreferences(t *testing.T) {
	factory := newMemoryFactory()
	householdId, senderId, members := seedHousehold(t, factory, 6, 5)
	roomKey := "chat:" + householdId.String()

	online := members[1]
	wantsMail := members[2]
	mutedRoom := members[3]
	mailDisabled := members[4]

	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.NotificationPreferenceRepository().Upsert(ctx, &entity.NotificationPreference{
		UserId: mutedRoom, ChatEmailEnabled: true, MutedRooms: []string{roomKey},
	}))
	require.NoError(t, uow.NotificationPreferenceRepository().Upsert(ctx, &entity.NotificationPreference{
		UserId: mailDisabled, ChatEmailEnabled: false,
	}))

	mail := &captureMailer{}
	svc := NewChatService(factory, mail, nopLogger{}, 50)

	svc.NotifyOffline(ctx, householdId, senderId, roomKey, "dinner at 7?", map[uuid.UUID]bool{
		senderId: true,
		online:   true,
	})

	wantUser, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: wantsMail})
	require.NoError(t, err)
	assert.Equal(t, []string{wantUser.Email}, mail.sentDigests())
}
