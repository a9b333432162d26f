package repository

import (
	"context"

	"github.com/rukshanyomal11/farm-management-system/internal/model"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"gorm.io/gorm"
)

type FarmRepository struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) *FarmRepository {
	return &FarmRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *FarmRepository) WithTx(tx *gorm.DB) *FarmRepository {
	return &FarmRepository{db: tx}
}

func (r *FarmRepository) Create(ctx context.Context, farm *model.Farm) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "FarmCreate")

	if err := r.db.WithContext(ctx).Create(farm).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create farm").
			Uint("owner_id", farm.OwnerID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Farm provisioned").
		Uint("farm_id", farm.ID).
		Uint("owner_id", farm.OwnerID).
		Log()

	return nil
}

func (r *FarmRepository) GetByOwner(ctx context.Context, ownerID uint) (*model.Farm, error) {
	var farm model.Farm
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&farm).Error; err != nil {
		return nil, err
	}
	return &farm, nil
}
