// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"strings"

	"household-finance-be/internal/dto"
	"household-finance-be/internal/entity"
	"household-finance-be/internal/pkg/logger"
	"household-finance-be/internal/pkg/mailer"
	"household-finance-be/internal/repository/specification"
	"household-finance-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatService interface {
	// History returns the last historyLimit messages for a room, oldest
	// first, for replay on chat-join.
	History(ctx context.Context, kind entity.RoomKind, roomId uuid.UUID) (*dto.ChatHistoryResponse, error)

	// Send validates and persists a message. The caller broadcasts the
	// returned copy only after Send succeeds, so history can never contain
	// a message that was broadcast but not stored, or vice versa.
	Send(ctx context.Context, userId uuid.UUID, kind entity.RoomKind, roomId uuid.UUID, text string, parentId *uuid.UUID) (*dto.ChatMessageResponse, error)

	// NotifyOffline emails household members who are not currently
	// connected, gated by each recipient's stored preference. Best-effort:
	// failures are logged, never surfaced to the sender.
	NotifyOffline(ctx context.Context, householdId, senderId uuid.UUID, roomKey, preview string, online map[uuid.UUID]bool)
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	logger       logger.ILogger
	historyLimit int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	log logger.ILogger,
	historyLimit int,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		emailService: emailService,
		logger:       log,
		historyLimit: historyLimit,
	}
}

func (s *chatService) History(ctx context.Context, kind entity.RoomKind, roomId uuid.UUID) (*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindRecentByRoom(ctx, kind, roomId, s.historyLimit)
	if err != nil {
		return nil, err
	}

	userIds := make([]uuid.UUID, 0, len(messages))
	seen := make(map[uuid.UUID]bool)
	for _, m := range messages {
		if !seen[m.UserId] {
			seen[m.UserId] = true
			userIds = append(userIds, m.UserId)
		}
	}
	names := s.resolveNames(ctx, uow, userIds)

	out := make([]*dto.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toChatMessageResponse(m, names[m.UserId]))
	}

	return &dto.ChatHistoryResponse{
		RoomType: string(kind),
		RoomId:   roomId,
		Messages: out,
	}, nil
}

func (s *chatService) Send(ctx context.Context, userId uuid.UUID, kind entity.RoomKind, roomId uuid.UUID, text string, parentId *uuid.UUID) (*dto.ChatMessageResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("message text must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	message := entity.ChatMessage{
		Id:       uuid.New(),
		RoomKind: kind,
		RoomId:   roomId,
		UserId:   userId,
		Text:     text,
		ParentId: parentId,
	}
	if err := uow.ChatMessageRepository().Create(ctx, &message); err != nil {
		return nil, err
	}

	names := s.resolveNames(ctx, uow, []uuid.UUID{userId})
	return toChatMessageResponse(&message, names[userId]), nil
}

func (s *chatService) NotifyOffline(ctx context.Context, householdId, senderId uuid.UUID, roomKey, preview string, online map[uuid.UUID]bool) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	members, err := uow.MembershipRepository().FindAll(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ActiveOnly{},
	)
	if err != nil {
		s.logger.Warn("ChatService", "Offline notify: failed to load members", map[string]interface{}{"error": err.Error()})
		return
	}

	sender, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: senderId})
	if err != nil || sender == nil {
		s.logger.Warn("ChatService", "Offline notify: sender lookup failed", map[string]interface{}{"user_id": senderId})
		return
	}

	for _, m := range members {
		if m.UserId == senderId || online[m.UserId] {
			continue
		}

		pref, err := uow.NotificationPreferenceRepository().GetByUserId(ctx, m.UserId)
		if err != nil {
			s.logger.Warn("ChatService", "Offline notify: preference lookup failed", map[string]interface{}{"user_id": m.UserId, "error": err.Error()})
			continue
		}
		if !pref.ChatEmailEnabled || contains(pref.MutedRooms, roomKey) {
			continue
		}

		recipient, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: m.UserId})
		if err != nil || recipient == nil {
			continue
		}

		if err := s.emailService.SendChatDigest(recipient.Email, sender.FullName, roomKey, preview); err != nil {
			s.logger.Warn("ChatService", "Offline notify: email failed", map[string]interface{}{"email": recipient.Email, "error": err.Error()})
		}
	}
}

func (s *chatService) resolveNames(ctx context.Context, uow unitofwork.UnitOfWork, ids []uuid.UUID) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	users, err := uow.UserRepository().FindByIds(ctx, ids)
	if err != nil {
		// Display names are cosmetic; the message still goes out.
		return names
	}
	for _, u := range users {
		names[u.Id] = u.FullName
	}
	return names
}

func toChatMessageResponse(m *entity.ChatMessage, fullName string) *dto.ChatMessageResponse {
	return &dto.ChatMessageResponse{
		Id:       m.Id,
		RoomType: string(m.RoomKind),
		RoomId:   m.RoomId,
		User: dto.ChatMessageUser{
			Id:       m.UserId,
			FullName: fullName,
		},
		Text:      m.Text,
		ParentId:  m.ParentId,
		Timestamp: m.CreatedAt,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
