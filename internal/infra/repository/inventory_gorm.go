package repository

import (
	"context"
	"errors"

	"swiftshop/internal/domain/model"
	repo "swiftshop/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が足りるときだけ減らす。
// WHERE stock >= qty の条件付きUPDATEなので、同時実行してもstockは負にならない。
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, itemID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ? AND stock >= ?", itemID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 符号付きの在庫調整。結果が負になる更新は弾く。
func (r *InventoryGormRepository) AdjustStock(ctx context.Context, itemID int64, delta int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ? AND stock + ? >= 0", itemID, delta).
		Update("stock", gorm.Expr("stock + ?", delta))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 行が無いのか、在庫不足で弾かれたのかを区別する
		var item model.Item
		err := r.db.WithContext(ctx).Select("id").Where("id = ?", itemID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}
		return repo.ErrStockUnderflow
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
