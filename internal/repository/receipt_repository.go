package repository

import (
	"context"

	"swiftshop/internal/domain/model"
)

// 追記専用。UpdateもDeleteも定義しない。
type ReceiptRepository interface {
	Create(ctx context.Context, receipt model.Receipt) (int64, error)
	FindByID(ctx context.Context, receiptID int64) (model.Receipt, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Receipt, int64, error)
}
