package repository

import (
	"context"
	"errors"
	"strings"

	"swiftshop/internal/domain/model"
	repo "swiftshop/internal/repository"

	"gorm.io/gorm"
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

// 公開商品のみを、検索/価格帯/ソート/ページング付きで返す。
func (r *ItemGormRepository) ListPublic(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Item{})

	// 公開（is_active=true）かつ、削除されていないものだけ
	tx = tx.Where("is_active = ?", true)

	// q はnameを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ?", like)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Item{}, 0, err
	}

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&items).Error; err != nil {
		return []model.Item{}, 0, err
	}

	return items, total, nil
}

// IDで商品を取得
func (r *ItemGormRepository) FindByID(ctx context.Context, id int64) (model.Item, error) {
	var item model.Item

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// 商品を新規作成
func (r *ItemGormRepository) Create(ctx context.Context, item model.Item) (model.Item, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// 商品を更新（stockはInventory側で扱う）
func (r *ItemGormRepository) Update(ctx context.Context, item model.Item) error {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"price":       item.Price,
			"is_active":   item.IsActive,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 論理削除
func (r *ItemGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Item{}, id)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
