package repository

import (
	"context"

	"swiftshop/internal/domain/model"
)

// 明細はitem_idで特定する（1カート内で同一商品は1行）。
type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByCartAndItem(ctx context.Context, cartID int64, itemID int64) (model.CartItem, error)
	// 同一商品は数量加算
	UpsertByCartAndItem(ctx context.Context, cartID int64, itemID int64, addQty int64) error
	SetQuantity(ctx context.Context, cartID int64, itemID int64, qty int64) error
	// 無ければ何もしない（エラーにしない）
	DeleteByCartAndItem(ctx context.Context, cartID int64, itemID int64) error
}
