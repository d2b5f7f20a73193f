package mapper

import (
	"household-finance-be/internal/entity"
	"household-finance-be/internal/model"
)

type InvitationMapper struct{}

func NewInvitationMapper() *InvitationMapper {
	return &InvitationMapper{}
}

func (m *InvitationMapper) ToEntity(i *model.Invitation) *entity.Invitation {
	if i == nil {
		return nil
	}
	return &entity.Invitation{
		Id:          i.Id,
		HouseholdId: i.HouseholdId,
		Email:       i.Email,
		Role:        entity.MembershipRole(i.Role),
		Token:       i.Token,
		Status:      entity.InvitationStatus(i.Status),
		ExpiresAt:   i.ExpiresAt,
		CreatedAt:   i.CreatedAt,
		AcceptedAt:  i.AcceptedAt,
	}
}

func (m *InvitationMapper) ToModel(i *entity.Invitation) *model.Invitation {
	if i == nil {
		return nil
	}
	return &model.Invitation{
		Id:          i.Id,
		HouseholdId: i.HouseholdId,
		Email:       i.Email,
		Role:        string(i.Role),
		Token:       i.Token,
		Status:      string(i.Status),
		ExpiresAt:   i.ExpiresAt,
		CreatedAt:   i.CreatedAt,
		AcceptedAt:  i.AcceptedAt,
	}
}
