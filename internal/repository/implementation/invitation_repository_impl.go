package implementation

import (
	"context"
	"errors"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/mapper"
	"household-finance-be/internal/model"
	"household-finance-be/internal/repository/contract"
	"household-finance-be/internal/repository/specification"

	"gorm.io/gorm"
)

type InvitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InvitationMapper
}

func NewInvitationRepository(db *gorm.DB) contract.InvitationRepository {
	return &InvitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewInvitationMapper(),
	}
}

func (r *InvitationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InvitationRepositoryImpl) Create(ctx context.Context, invitation *entity.Invitation) error {
	m := r.mapper.ToModel(invitation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*invitation = *r.mapper.ToEntity(m)
	return nil
}

func (r *InvitationRepositoryImpl) Update(ctx context.Context, invitation *entity.Invitation) error {
	m := r.mapper.ToModel(invitation)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*invitation = *r.mapper.ToEntity(m)
	return nil
}

func (r *InvitationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invitation, error) {
	var m model.Invitation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InvitationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invitation, error) {
	var models []*model.Invitation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Invitation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *InvitationRepositoryImpl) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Invitation{}).
		Where("status = ? AND expires_at < ?", string(entity.InvitationStatusPending), before).
		Update("status", string(entity.InvitationStatusExpired))
	return result.RowsAffected, result.Error
}
