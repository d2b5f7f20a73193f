package mapper

import (
	"household-finance-be/internal/entity"
	"household-finance-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Status:    entity.UserStatus(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func (m *UserMapper) PreferenceToEntity(p *model.NotificationPreference) *entity.NotificationPreference {
	if p == nil {
		return nil
	}
	return &entity.NotificationPreference{
		UserId:           p.UserId,
		ChatEmailEnabled: p.ChatEmailEnabled,
		MutedRooms:       []string(p.MutedRooms),
		UpdatedAt:        p.UpdatedAt,
	}
}

func (m *UserMapper) PreferenceToModel(p *entity.NotificationPreference) *model.NotificationPreference {
	if p == nil {
		return nil
	}
	return &model.NotificationPreference{
		UserId:           p.UserId,
		ChatEmailEnabled: p.ChatEmailEnabled,
		MutedRooms:       p.MutedRooms,
		UpdatedAt:        p.UpdatedAt,
	}
}
