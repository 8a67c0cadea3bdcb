package repository

import (
	"context"
	"errors"

	"swiftshop/internal/domain/model"
)

// stockを0未満にする更新を弾いたとき
var ErrStockUnderflow = errors.New("stock underflow")

type InventoryRepository interface {
	// 在庫が足りるときだけ減算（0行更新ならfalse）
	DecreaseStockIfEnough(ctx context.Context, itemID int64, qty int64) (bool, error)

	// 符号付きの在庫調整。結果が負になる場合はErrStockUnderflow。
	// 判定は条件付きUPDATEで行う（読み直し→書き込みの競合を作らない）。
	AdjustStock(ctx context.Context, itemID int64, delta int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error
}
