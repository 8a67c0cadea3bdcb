package repository

import (
	"context"

	"swiftshop/internal/domain/model"
)

type ReceiptItemRepository interface {
	CreateBulk(ctx context.Context, receiptID int64, items []model.ReceiptItem) error
	ListByReceiptID(ctx context.Context, receiptID int64) ([]model.ReceiptItem, error)
}
