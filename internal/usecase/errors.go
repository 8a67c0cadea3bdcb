package usecase

import (
	"errors"
	"fmt"
)

// HTTPError は入力の形そのものが不正なときに使う（HTTP層がそのまま返す）。
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 業務上の失敗。HTTPステータスへの変換はhandlerのwriteErrorが担当する。
var (
	// カート編集の数量が不正（負数など）
	ErrInvalidQuantity = errors.New("invalid quantity")

	// 明細ゼロでのチェックアウト
	ErrEmptyCart = errors.New("cart empty")

	// stockを0未満にする在庫調整
	ErrStockUnderflow = errors.New("stock underflow")
)

// チェックアウトが在庫不足で中断されたとき。どの商品かを必ず持つ。
type InsufficientStockError struct {
	ItemID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: item %d", e.ItemID)
}

func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	ok := errors.As(err, &ise)
	return ise, ok
}

// ストレージ起因の失敗。部分コミットは無いので同じリクエストを再試行してよい。
type TransientStoreError struct {
	cause error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.cause)
}

func (e *TransientStoreError) Unwrap() error {
	return e.cause
}

func NewTransientStoreError(cause error) error {
	return &TransientStoreError{cause: cause}
}

func IsTransient(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te)
}
