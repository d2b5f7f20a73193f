package mapper

import (
	"household-finance-be/internal/entity"
	"household-finance-be/internal/model"
)

type HouseholdMapper struct{}

func NewHouseholdMapper() *HouseholdMapper {
	return &HouseholdMapper{}
}

func (m *HouseholdMapper) HouseholdToEntity(h *model.Household) *entity.Household {
	if h == nil {
		return nil
	}
	return &entity.Household{
		Id:        h.Id,
		Name:      h.Name,
		MaxUsers:  h.MaxUsers,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func (m *HouseholdMapper) HouseholdToModel(h *entity.Household) *model.Household {
	if h == nil {
		return nil
	}
	return &model.Household{
		Id:        h.Id,
		Name:      h.Name,
		MaxUsers:  h.MaxUsers,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func (m *HouseholdMapper) MembershipToEntity(mm *model.HouseholdMembership) *entity.HouseholdMembership {
	if mm == nil {
		return nil
	}
	return &entity.HouseholdMembership{
		Id:          mm.Id,
		HouseholdId: mm.HouseholdId,
		UserId:      mm.UserId,
		Role:        entity.MembershipRole(mm.Role),
		Active:      mm.Active,
		JoinedAt:    mm.JoinedAt,
	}
}

func (m *HouseholdMapper) MembershipToModel(e *entity.HouseholdMembership) *model.HouseholdMembership {
	if e == nil {
		return nil
	}
	return &model.HouseholdMembership{
		Id:          e.Id,
		HouseholdId: e.HouseholdId,
		UserId:      e.UserId,
		Role:        string(e.Role),
		Active:      e.Active,
		JoinedAt:    e.JoinedAt,
	}
}
