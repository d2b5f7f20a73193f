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
	"gorm.io/gorm/clause"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserRepositoryImpl) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}
	var models []*model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.User, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

type NotificationPreferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewNotificationPreferenceRepository(db *gorm.DB) contract.NotificationPreferenceRepository {
	return &NotificationPreferenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

// GetByUserId returns the stored preference, or the default (email enabled)
// when the user never saved one.
func (r *NotificationPreferenceRepositoryImpl) GetByUserId(ctx context.Context, userId uuid.UUID) (*entity.NotificationPreference, error) {
	var m model.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.NotificationPreference{UserId: userId, ChatEmailEnabled: true}, nil
		}
		return nil, err
	}
	return r.mapper.PreferenceToEntity(&m), nil
}

func (r *NotificationPreferenceRepositoryImpl) Upsert(ctx context.Context, pref *entity.NotificationPreference) error {
	m := r.mapper.PreferenceToModel(pref)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}
