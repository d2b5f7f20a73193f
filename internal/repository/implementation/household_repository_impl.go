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

type HouseholdRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HouseholdMapper
}

func NewHouseholdRepository(db *gorm.DB) contract.HouseholdRepository {
	return &HouseholdRepositoryImpl{
		db:     db,
		mapper: mapper.NewHouseholdMapper(),
	}
}

func (r *HouseholdRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *HouseholdRepositoryImpl) Create(ctx context.Context, household *entity.Household) error {
	m := r.mapper.HouseholdToModel(household)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*household = *r.mapper.HouseholdToEntity(m)
	return nil
}

func (r *HouseholdRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Household, error) {
	var m model.Household
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.HouseholdToEntity(&m), nil
}

// LockById issues SELECT ... FOR UPDATE on the household row. Concurrent
// admission transactions against the same household queue here; whichever
// commits first is counted by the next one.
func (r *HouseholdRepositoryImpl) LockById(ctx context.Context, id uuid.UUID) (*entity.Household, error) {
	var m model.Household
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.HouseholdToEntity(&m), nil
}
