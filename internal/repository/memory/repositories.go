package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
)

// The memory repositories interpret the query specifications structurally
// instead of compiling them to SQL. Only the specs the services actually
// use are supported; an unknown spec is a programming error.

// household

type householdRepository struct {
	uow *UnitOfWork
}

func (r *householdRepository) Create(ctx context.Context, h *entity.Household) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.Id == uuid.Nil {
		h.Id = uuid.New()
	}
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	s.households[h.Id] = *h
	return nil
}

func (r *householdRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Household, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.households {
		if matchHousehold(h, specs) {
			out := h
			return &out, nil
		}
	}
	return nil, nil
}

func (r *householdRepository) LockById(ctx context.Context, id uuid.UUID) (*entity.Household, error) {
	release := r.uow.acquireRowLock(id)
	defer release()

	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.households[id]; ok {
		out := h
		return &out, nil
	}
	return nil, nil
}

func matchHousehold(h entity.Household, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if h.Id != v.ID {
				return false
			}
		default:
			panic(fmt.Sprintf("memory: unsupported household spec %T", sp))
		}
	}
	return true
}

// membership

type membershipRepository struct {
	uow *UnitOfWork
}

func (r *membershipRepository) Create(ctx context.Context, m *entity.HouseholdMembership) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing.HouseholdId == m.HouseholdId && existing.UserId == m.UserId {
			return fmt.Errorf("duplicate membership for user %s in household %s", m.UserId, m.HouseholdId)
		}
	}
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	m.JoinedAt = time.Now()
	s.memberships[m.Id] = *m
	return nil
}

func (r *membershipRepository) Update(ctx context.Context, m *entity.HouseholdMembership) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[m.Id]; !ok {
		return fmt.Errorf("membership %s not found", m.Id)
	}
	s.memberships[m.Id] = *m
	return nil
}

func (r *membershipRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HouseholdMembership, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if matchMembership(m, specs) {
			out := m
			return &out, nil
		}
	}
	return nil, nil
}

func (r *membershipRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HouseholdMembership, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.HouseholdMembership
	for _, m := range s.memberships {
		if matchMembership(m, specs) {
			c := m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *membershipRepository) CountActive(ctx context.Context, householdId uuid.UUID) (int64, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, m := range s.memberships {
		if m.HouseholdId == householdId && m.Active {
			count++
		}
	}
	return count, nil
}

func matchMembership(m entity.HouseholdMembership, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if m.Id != v.ID {
				return false
			}
		case specification.ByHouseholdID:
			if m.HouseholdId != v.HouseholdID {
				return false
			}
		case specification.ByUserID:
			if m.UserId != v.UserID {
				return false
			}
		case specification.ActiveOnly:
			if !m.Active {
				return false
			}
		default:
			panic(fmt.Sprintf("memory: unsupported membership spec %T", sp))
		}
	}
	return true
}

// invitation

type invitationRepository struct {
	uow *UnitOfWork
}

func (r *invitationRepository) Create(ctx context.Context, i *entity.Invitation) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if i.Id == uuid.Nil {
		i.Id = uuid.New()
	}
	i.CreatedAt = time.Now()
	s.invitations[i.Id] = *i
	return nil
}

func (r *invitationRepository) Update(ctx context.Context, i *entity.Invitation) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[i.Id]; !ok {
		return fmt.Errorf("invitation %s not found", i.Id)
	}
	s.invitations[i.Id] = *i
	return nil
}

func (r *invitationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invitation, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.invitations {
		if matchInvitation(i, specs) {
			out := i
			return &out, nil
		}
	}
	return nil, nil
}

func (r *invitationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invitation, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Invitation
	for _, i := range s.invitations {
		if matchInvitation(i, specs) {
			c := i
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *invitationRepository) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for id, i := range s.invitations {
		if i.Status == entity.InvitationStatusPending && i.ExpiresAt.Before(before) {
			i.Status = entity.InvitationStatusExpired
			s.invitations[id] = i
			affected++
		}
	}
	return affected, nil
}

func matchInvitation(i entity.Invitation, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if i.Id != v.ID {
				return false
			}
		case specification.ByHouseholdID:
			if i.HouseholdId != v.HouseholdID {
				return false
			}
		case specification.ByToken:
			if i.Token != v.Token {
				return false
			}
		case specification.ByStatus:
			if string(i.Status) != v.Status {
				return false
			}
		case specification.ByEmail:
			if i.Email != v.Email {
				return false
			}
		case specification.ExpiresBefore:
			if !i.ExpiresAt.Before(v.At) {
				return false
			}
		default:
			panic(fmt.Sprintf("memory: unsupported invitation spec %T", sp))
		}
	}
	return true
}

// chat messages

type chatMessageRepository struct {
	uow *UnitOfWork
}

func (r *chatMessageRepository) Create(ctx context.Context, m *entity.ChatMessage) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *m)
	return nil
}

func (r *chatMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.ChatMessage
	for idx := range s.messages {
		if matchMessage(s.messages[idx], specs) {
			c := s.messages[idx]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *chatMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *chatMessageRepository) FindRecentByRoom(ctx context.Context, kind entity.RoomKind, roomId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entity.ChatMessage
	for _, m := range s.messages {
		if m.RoomKind == kind && m.RoomId == roomId {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	out := make([]*entity.ChatMessage, len(matched))
	for i := range matched {
		c := matched[i]
		out[i] = &c
	}
	return out, nil
}

func matchMessage(m entity.ChatMessage, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByRoom:
			if string(m.RoomKind) != v.Kind || m.RoomId != v.RoomID {
				return false
			}
		case specification.ByUserID:
			if m.UserId != v.UserID {
				return false
			}
		default:
			panic(fmt.Sprintf("memory: unsupported chat spec %T", sp))
		}
	}
	return true
}

// users and preferences

type userRepository struct {
	uow *UnitOfWork
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	u.CreatedAt = time.Now()
	s.users[u.Id] = *u
	return nil
}

func (r *userRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if matchUser(u, specs) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *userRepository) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			c := u
			out = append(out, &c)
		}
	}
	return out, nil
}

func matchUser(u entity.User, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if u.Id != v.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != v.Email {
				return false
			}
		default:
			panic(fmt.Sprintf("memory: unsupported user spec %T", sp))
		}
	}
	return true
}

type preferenceRepository struct {
	uow *UnitOfWork
}

func (r *preferenceRepository) GetByUserId(ctx context.Context, userId uuid.UUID) (*entity.NotificationPreference, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[userId]; ok {
		out := p
		return &out, nil
	}
	return &entity.NotificationPreference{UserId: userId, ChatEmailEnabled: true}, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, pref *entity.NotificationPreference) error {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	pref.UpdatedAt = time.Now()
	s.prefs[pref.UserId] = *pref
	return nil
}
