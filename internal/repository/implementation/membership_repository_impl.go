package implementation

import (
	"context"
	"errors"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/mapper"
	"household-finance-be/internal/model"
	"household-finance-be/internal/repository/contract"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HouseholdMapper
}

func NewMembershipRepository(db *gorm.DB) contract.MembershipRepository {
	return &MembershipRepositoryImpl{
		db:     db,
		mapper: mapper.NewHouseholdMapper(),
	}
}

func (r *MembershipRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MembershipRepositoryImpl) Create(ctx context.Context, membership *entity.HouseholdMembership) error {
	m := r.mapper.MembershipToModel(membership)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*membership = *r.mapper.MembershipToEntity(m)
	return nil
}

func (r *MembershipRepositoryImpl) Update(ctx context.Context, membership *entity.HouseholdMembership) error {
	m := r.mapper.MembershipToModel(membership)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*membership = *r.mapper.MembershipToEntity(m)
	return nil
}

func (r *MembershipRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HouseholdMembership, error) {
	var m model.HouseholdMembership
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MembershipToEntity(&m), nil
}

func (r *MembershipRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HouseholdMembership, error) {
	var models []*model.HouseholdMembership
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.HouseholdMembership, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MembershipToEntity(m)
	}
	return entities, nil
}

func (r *MembershipRepositoryImpl) CountActive(ctx context.Context, householdId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.HouseholdMembership{}).
		Where("household_id = ? AND active = ?", householdId, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
