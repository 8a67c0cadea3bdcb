package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Receipts() ReceiptRepository
	ReceiptItems() ReceiptItemRepository
	Carts() CartRepository
	CartItems() CartItemRepository
	Inventory() InventoryRepository
	Items() ItemRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら全部ロールバック（部分コミットは無い）。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
