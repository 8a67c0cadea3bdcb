package repository

import (
	"context"

	repo "swiftshop/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	receipts     repo.ReceiptRepository
	receiptItems repo.ReceiptItemRepository
	carts        repo.CartRepository
	cartItems    repo.CartItemRepository
	inventory    repo.InventoryRepository
	items        repo.ItemRepository
}

func (r *txReposGorm) Receipts() repo.ReceiptRepository         { return r.receipts }
func (r *txReposGorm) ReceiptItems() repo.ReceiptItemRepository { return r.receiptItems }
func (r *txReposGorm) Carts() repo.CartRepository               { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository       { return r.cartItems }
func (r *txReposGorm) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txReposGorm) Items() repo.ItemRepository               { return r.items }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがエラーを返すと全体がロールバックされる。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			receipts:     NewReceiptGormRepository(tx),
			receiptItems: NewReceiptItemGormRepository(tx),
			carts:        NewCartGormRepository(tx),
			cartItems:    NewCartGormRepository(tx),
			inventory:    NewInventoryGormRepository(tx),
			items:        NewItemGormRepository(tx),
		}
		return fn(r)
	})
}
