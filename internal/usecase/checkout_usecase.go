package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"swiftshop/internal/domain/model"
	repo "swiftshop/internal/repository"
)

// レシート番号などのIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// CheckoutUsecase はカートをレシートに変換する。
// 在庫減算・レシート作成・カートクリアは1トランザクション（全部成功か全部無しか）。
type CheckoutUsecase struct {
	tx    repo.TransactionManager
	idGen IDGenerator
	clock Clock
}

func NewCheckoutUsecase(tx repo.TransactionManager, idGen IDGenerator, clock Clock) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, idGen: idGen, clock: clock}
}

type CheckoutInput struct {
	PaymentMethod string
}

type ReceiptLineOutput struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type ReceiptOutput struct {
	ID            int64               `json:"id"`
	Number        string              `json:"number"`
	UserID        int64               `json:"user_id"`
	Total         int64               `json:"total"`
	PaymentMethod string              `json:"payment_method"`
	PurchasedAt   time.Time           `json:"purchased_at"`
	Lines         []ReceiptLineOutput `json:"lines"`
}

// Checkout は同期1回で完結する。支払い確認フェーズや在庫の取り置きは無い。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (ReceiptOutput, error) {
	if userID <= 0 {
		return ReceiptOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// 支払い方法は中身を解釈しない。空だけ弾く。
	pm := strings.TrimSpace(in.PaymentMethod)
	if pm == "" || len(pm) > 64 {
		return ReceiptOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	var out ReceiptOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return NewTransientStoreError(err)
		}

		//カート明細取得
		lines, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewTransientStoreError(err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// 全明細を現在価格・現在在庫で検証する。1件でも足りなければ全体を中断。
		receiptLines := make([]model.ReceiptItem, 0, len(lines))
		var total int64 = 0
		now := u.clock.Now()

		for _, ln := range lines {
			item, err := r.Items().FindByID(ctx, ln.ItemID)
			if errors.Is(err, repo.ErrNotFound) {
				// 消えた商品は在庫0と同じ扱い
				return &InsufficientStockError{ItemID: ln.ItemID}
			}
			if err != nil {
				return NewTransientStoreError(err)
			}
			if !item.IsActive {
				return &InsufficientStockError{ItemID: ln.ItemID}
			}
			if item.Stock < ln.Quantity {
				return &InsufficientStockError{ItemID: ln.ItemID}
			}

			//合計はカート追加時ではなく今の価格で計算する
			total += item.Price * ln.Quantity

			//購入時点のスナップショット
			receiptLines = append(receiptLines, model.ReceiptItem{
				ItemID:            ln.ItemID,
				ItemNameSnapshot:  item.Name,
				UnitPriceSnapshot: item.Price,
				Quantity:          ln.Quantity,
				CreatedAt:         now,
			})
		}

		// 在庫減算。条件付きUPDATEが最終権限なので、
		// 上の事前チェックを同時実行ですり抜けた場合もここで止まり、txごと巻き戻る。
		for _, ln := range lines {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ln.ItemID, ln.Quantity)
			if err != nil {
				return NewTransientStoreError(err)
			}
			if !ok {
				return &InsufficientStockError{ItemID: ln.ItemID}
			}
		}

		//レシート作成
		number := u.idGen.NewID()
		receiptID, err := r.Receipts().Create(ctx, model.Receipt{
			Number:        number,
			UserID:        userID,
			Total:         total,
			PaymentMethod: pm,
			PurchasedAt:   now,
			CreatedAt:     now,
		})
		if err != nil {
			return NewTransientStoreError(err)
		}

		//明細一括作成
		if err := r.ReceiptItems().CreateBulk(ctx, receiptID, receiptLines); err != nil {
			return NewTransientStoreError(err)
		}

		//カートをCHECKED_OUTにして明細をクリア（カート自体は消さない）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewTransientStoreError(err)
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewTransientStoreError(err)
		}

		outLines := make([]ReceiptLineOutput, 0, len(receiptLines))
		for _, rl := range receiptLines {
			outLines = append(outLines, ReceiptLineOutput{
				ItemID:   rl.ItemID,
				Name:     rl.ItemNameSnapshot,
				Price:    rl.UnitPriceSnapshot,
				Quantity: rl.Quantity,
			})
		}

		out = ReceiptOutput{
			ID:            receiptID,
			Number:        number,
			UserID:        userID,
			Total:         total,
			PaymentMethod: pm,
			PurchasedAt:   now,
			Lines:         outLines,
		}
		return nil
	})

	if err != nil {
		return ReceiptOutput{}, err
	}
	return out, nil
}
