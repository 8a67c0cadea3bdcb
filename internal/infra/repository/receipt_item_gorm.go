package repository

import (
	"context"

	"swiftshop/internal/domain/model"

	"gorm.io/gorm"
)

type ReceiptItemGormRepository struct {
	db *gorm.DB
}

func NewReceiptItemGormRepository(db *gorm.DB) *ReceiptItemGormRepository {
	return &ReceiptItemGormRepository{db: db}
}

// レシート明細を一括作成
func (r *ReceiptItemGormRepository) CreateBulk(ctx context.Context, receiptID int64, items []model.ReceiptItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]model.ReceiptItem, 0, len(items))
	for _, it := range items {
		it.ReceiptID = receiptID
		rows = append(rows, it)
	}

	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *ReceiptItemGormRepository) ListByReceiptID(ctx context.Context, receiptID int64) ([]model.ReceiptItem, error) {
	var items []model.ReceiptItem

	if err := r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.ReceiptItem{}, err
	}

	return items, nil
}
