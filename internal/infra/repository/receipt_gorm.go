package repository

import (
	"context"
	"errors"

	"swiftshop/internal/domain/model"
	repo "swiftshop/internal/repository"

	"gorm.io/gorm"
)

type ReceiptGormRepository struct {
	db *gorm.DB
}

func NewReceiptGormRepository(db *gorm.DB) *ReceiptGormRepository {
	return &ReceiptGormRepository{db: db}
}

func (r *ReceiptGormRepository) Create(ctx context.Context, receipt model.Receipt) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&receipt).Error; err != nil {
		return 0, err
	}
	return receipt.ID, nil
}

func (r *ReceiptGormRepository) FindByID(ctx context.Context, receiptID int64) (model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).Where("id = ?", receiptID).First(&rc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Receipt{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Receipt{}, err
	}
	return rc, nil
}

func (r *ReceiptGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Receipt, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Receipt{}, 0, err
	}

	var items []model.Receipt
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Receipt{}, 0, err
	}

	return items, total, nil
}
