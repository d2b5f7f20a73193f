// FILE: internal/service/notification_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"household-finance-be/internal/dto"
	"household-finance-be/internal/entity"
	"household-finance-be/internal/model"
	"household-finance-be/internal/pkg/logger"
	"household-finance-be/internal/repository/contract"
	"household-finance-be/internal/repository/specification"
	"household-finance-be/internal/repository/unitofwork"
	"household-finance-be/pkg/events"
	pktNats "household-finance-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Delivery pushes real-time updates to connected clients. Implemented by the
// realtime hub; nil in tests and in stripped-down deployments.
type Delivery interface {
	SendToUser(userID uuid.UUID, event string, data interface{})
	PublishUpdate(resourceType string, resourceId uuid.UUID, data interface{})
}

type INotificationService interface {
	// Start begins consuming durable domain events from JetStream.
	Start()

	List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, userId uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)
}

type notificationService struct {
	repo       contract.NotificationRepository
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   Delivery
	logger     logger.ILogger
}

func NewNotificationService(
	repo contract.NotificationRepository,
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	delivery Delivery,
	log logger.ILogger,
) INotificationService {
	return &notificationService{
		repo:       repo,
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *notificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No subscriber configured, worker not started", nil)
		return
	}
	err := s.subscriber.Subscribe("household.>", "household-notif-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start event consumer", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Worker started, consuming household.>", nil)
}

func (s *notificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	householdId, err := uuid.Parse(str(payload["household_id"]))
	if err != nil {
		s.logger.Warn("NotificationService", "Event without household_id, dropping", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	switch event.EventType() {
	case events.TypeMemberJoined:
		userId, err := uuid.Parse(str(payload["user_id"]))
		if err != nil {
			return nil
		}
		title := "New household member"
		msg := fmt.Sprintf("A new %s joined your household", str(payload["role"]))
		if err := s.fanOutToMembers(ctx, householdId, userId, event, title, msg, false); err != nil {
			return err
		}

	case events.TypeMemberDeactivated:
		userId, err := uuid.Parse(str(payload["user_id"]))
		if err != nil {
			return nil
		}
		title := "Member deactivated"
		msg := "A member of your household was deactivated"
		if err := s.fanOutToMembers(ctx, householdId, userId, event, title, msg, true); err != nil {
			return err
		}

	case events.TypeInvitationSent:
		title := "Invitation sent"
		msg := fmt.Sprintf("An invitation was sent to %s", str(payload["email"]))
		if err := s.fanOutToMembers(ctx, householdId, uuid.Nil, event, title, msg, true); err != nil {
			return err
		}

	default:
		s.logger.Info("NotificationService", "Ignoring event type", map[string]interface{}{"type": event.EventType()})
	}

	// Clients subscribed to household updates get a data-update so member
	// lists refresh without polling.
	if s.delivery != nil {
		s.delivery.PublishUpdate("household", householdId, map[string]interface{}{
			"event":   event.EventType(),
			"payload": payload,
		})
	}

	return nil
}

// fanOutToMembers stores one inbox row per active member (excluding the
// actor) and pushes it to each member's personal room. adminsOnly restricts
// delivery to admins, used for administrative events.
func (s *notificationService) fanOutToMembers(ctx context.Context, householdId, actorId uuid.UUID, event events.Event, title, message string, adminsOnly bool) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	members, err := uow.MembershipRepository().FindAll(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return err // NATS redelivers on error
	}

	metaJSON, _ := json.Marshal(event.Payload())

	for _, m := range members {
		if m.UserId == actorId {
			continue
		}
		if adminsOnly && m.Role != entity.MembershipRoleAdmin {
			continue
		}

		notif := model.Notification{
			Id:        uuid.New(),
			UserId:    m.UserId,
			TypeCode:  event.EventType(),
			Title:     title,
			Message:   message,
			Metadata:  datatypes.JSON(metaJSON),
			IsRead:    false,
			CreatedAt: time.Now(),
		}
		if err := s.repo.Create(ctx, &notif); err != nil {
			s.logger.Error("NotificationService", "Failed to store notification", map[string]interface{}{
				"user_id": m.UserId,
				"error":   err.Error(),
			})
			continue
		}

		if s.delivery != nil {
			s.delivery.SendToUser(m.UserId, "notification", notif)
		}
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetByUserId(ctx, userId, limit, offset)
}

func (s *notificationService) UnreadCount(ctx context.Context, userId uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userId)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pref, err := uow.NotificationPreferenceRepository().GetByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	pref.UserId = userId

	if req.ChatEmailEnabled != nil {
		pref.ChatEmailEnabled = *req.ChatEmailEnabled
	}
	if req.MutedRooms != nil {
		pref.MutedRooms = req.MutedRooms
	}

	if err := uow.NotificationPreferenceRepository().Upsert(ctx, pref); err != nil {
		return nil, err
	}

	return &dto.PreferencesResponse{
		ChatEmailEnabled: pref.ChatEmailEnabled,
		MutedRooms:       pref.MutedRooms,
	}, nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
