package usecase

import (
	"context"
	"errors"
	"net/http"

	"swiftshop/internal/domain/model"
	repo "swiftshop/internal/repository"
)

// ReceiptUsecase はレシートの参照のみ。作成はCheckoutUsecaseだけが行う。
type ReceiptUsecase struct {
	receiptRepo     repo.ReceiptRepository
	receiptItemRepo repo.ReceiptItemRepository
}

func NewReceiptUsecase(
	receiptRepo repo.ReceiptRepository,
	receiptItemRepo repo.ReceiptItemRepository,
) *ReceiptUsecase {
	return &ReceiptUsecase{
		receiptRepo:     receiptRepo,
		receiptItemRepo: receiptItemRepo,
	}
}

// 自分のレシート一覧
func (u *ReceiptUsecase) ListMyReceipts(ctx context.Context, userID int64) ([]ReceiptOutput, error) {
	if userID <= 0 {
		return []ReceiptOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまずは固定で取る
	receipts, _, err := u.receiptRepo.ListByUserID(ctx, userID, 1, 50)
	if err != nil {
		return []ReceiptOutput{}, NewTransientStoreError(err)
	}

	outs := make([]ReceiptOutput, 0, len(receipts))
	for _, rc := range receipts {
		lines, err := u.receiptItemRepo.ListByReceiptID(ctx, rc.ID)
		if err != nil {
			return []ReceiptOutput{}, NewTransientStoreError(err)
		}
		outs = append(outs, toReceiptOutput(rc, lines))
	}
	return outs, nil
}

// 自分のレシート詳細
func (u *ReceiptUsecase) GetMyReceiptDetail(ctx context.Context, userID int64, receiptID int64) (ReceiptOutput, error) {
	if userID <= 0 {
		return ReceiptOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if receiptID <= 0 {
		return ReceiptOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rc, err := u.receiptRepo.FindByID(ctx, receiptID)
	if errors.Is(err, repo.ErrNotFound) {
		return ReceiptOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ReceiptOutput{}, NewTransientStoreError(err)
	}
	if rc.UserID != userID {
		//他人のレシートは「存在しない扱い」にする
		return ReceiptOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	lines, err := u.receiptItemRepo.ListByReceiptID(ctx, receiptID)
	if err != nil {
		return ReceiptOutput{}, NewTransientStoreError(err)
	}

	return toReceiptOutput(rc, lines), nil
}

func toReceiptOutput(rc model.Receipt, lines []model.ReceiptItem) ReceiptOutput {
	outLines := make([]ReceiptLineOutput, 0, len(lines))
	for _, ln := range lines {
		outLines = append(outLines, ReceiptLineOutput{
			ItemID:   ln.ItemID,
			Name:     ln.ItemNameSnapshot,
			Price:    ln.UnitPriceSnapshot,
			Quantity: ln.Quantity,
		})
	}

	return ReceiptOutput{
		ID:            rc.ID,
		Number:        rc.Number,
		UserID:        rc.UserID,
		Total:         rc.Total,
		PaymentMethod: rc.PaymentMethod,
		PurchasedAt:   rc.PurchasedAt,
		Lines:         outLines,
	}
}
