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

// CatalogUsecase は商品の公開参照と管理者操作。
// 在庫調整は履歴と一緒に1トランザクションで書く。
type CatalogUsecase struct {
	itemRepo repo.ItemRepository
	tx       repo.TransactionManager
}

func NewCatalogUsecase(itemRepo repo.ItemRepository, tx repo.TransactionManager) *CatalogUsecase {
	return &CatalogUsecase{itemRepo: itemRepo, tx: tx}
}

// GET /items の入力DTO
type ListItemsInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ItemOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

type ListItemsOutput struct {
	Items []ItemOutput `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type SaveItemInput struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	IsActive    bool
}

type AdjustStockInput struct {
	Delta  int64
	Reason string
}

// 公開一覧
func (u *CatalogUsecase) ListItems(ctx context.Context, in ListItemsInput) (ListItemsOutput, error) {
	if in.Page < 1 {
		return ListItemsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ListItemsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	q := repo.ItemListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	}

	items, total, err := u.itemRepo.ListPublic(ctx, q)
	if err != nil {
		return ListItemsOutput{}, NewTransientStoreError(err)
	}

	outs := make([]ItemOutput, 0, len(items))
	for _, it := range items {
		outs = append(outs, toItemOutput(it))
	}

	return ListItemsOutput{Items: outs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 公開詳細（非公開商品は存在しない扱い）
func (u *CatalogUsecase) GetItem(ctx context.Context, itemID int64) (ItemOutput, error) {
	if itemID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.itemRepo.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ItemOutput{}, NewTransientStoreError(err)
	}
	if !item.IsActive {
		return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return toItemOutput(item), nil
}

// 管理者：商品作成
func (u *CatalogUsecase) CreateItem(ctx context.Context, adminID int64, in SaveItemInput) (ItemOutput, error) {
	if adminID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateSaveItem(in); err != nil {
		return ItemOutput{}, err
	}

	now := time.Now()
	created, err := u.itemRepo.Create(ctx, model.Item{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return ItemOutput{}, NewTransientStoreError(err)
	}

	return toItemOutput(created), nil
}

// 管理者：商品更新（在庫はAdjustStockでのみ増減する）
func (u *CatalogUsecase) UpdateItem(ctx context.Context, adminID int64, itemID int64, in SaveItemInput) (ItemOutput, error) {
	if adminID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateSaveItem(in); err != nil {
		return ItemOutput{}, err
	}

	item, err := u.itemRepo.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ItemOutput{}, NewTransientStoreError(err)
	}

	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Price = in.Price
	item.IsActive = in.IsActive

	if err := u.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return ItemOutput{}, NewTransientStoreError(err)
	}

	return toItemOutput(item), nil
}

// 管理者：論理削除
func (u *CatalogUsecase) DeleteItem(ctx context.Context, adminID int64, itemID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.itemRepo.SoftDelete(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewTransientStoreError(err)
	}
	return nil
}

// 管理者：在庫調整。0未満になる調整はErrStockUnderflow。
// 減算の判定はチェックアウトと同じ条件付きUPDATEなので、同時チェックアウトと競合しても負にならない。
func (u *CatalogUsecase) AdjustStock(ctx context.Context, adminID int64, itemID int64, in AdjustStockInput) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Delta == 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid delta")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" || len(reason) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid reason")
	}

	//調整と履歴は同じtxで書く
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Inventory().AdjustStock(ctx, itemID, in.Delta)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if errors.Is(err, repo.ErrStockUnderflow) {
			return ErrStockUnderflow
		}
		if err != nil {
			return NewTransientStoreError(err)
		}

		if err := r.Inventory().CreateAdjustment(ctx, model.StockAdjustment{
			ItemID:      itemID,
			AdminUserID: adminID,
			Delta:       in.Delta,
			Reason:      reason,
			CreatedAt:   time.Now(),
		}); err != nil {
			return NewTransientStoreError(err)
		}

		return nil
	})

	return err
}

func validateSaveItem(in SaveItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	return nil
}

func toItemOutput(it model.Item) ItemOutput {
	return ItemOutput{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Stock:       it.Stock,
		IsActive:    it.IsActive,
	}
}
