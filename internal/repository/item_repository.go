package repository

import (
	"context"
	"errors"

	"swiftshop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ItemListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。在庫の増減はInventoryRepository。
type ItemRepository interface {
	ListPublic(ctx context.Context, q ItemListQuery) ([]model.Item, int64, error)
	FindByID(ctx context.Context, id int64) (model.Item, error)

	Create(ctx context.Context, item model.Item) (model.Item, error)
	Update(ctx context.Context, item model.Item) error
	SoftDelete(ctx context.Context, id int64) error
}
