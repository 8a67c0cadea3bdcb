package usecase_test

import (
	"context"
	"testing"

	"swiftshop/internal/domain/model"
	repo "swiftshop/internal/repository"
	"swiftshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCatalogUsecase(s *memStore) (*usecase.CatalogUsecase, *ItemRepoMock) {
	itemRepo := new(ItemRepoMock)
	return usecase.NewCatalogUsecase(itemRepo, &memTxManager{s: s}), itemRepo
}

// =====================
// 公開参照
// =====================

func TestCatalogUsecase_ListItems_InvalidPaging(t *testing.T) {
	uc, _ := newCatalogUsecase(newMemStore())

	_, err := uc.ListItems(context.Background(), usecase.ListItemsInput{Page: 0, Limit: 20})
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)

	_, err = uc.ListItems(context.Background(), usecase.ListItemsInput{Page: 1, Limit: 101})
	he, ok = usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCatalogUsecase_ListItems(t *testing.T) {
	uc, itemRepo := newCatalogUsecase(newMemStore())

	itemRepo.On("ListPublic", mock.Anything, mock.Anything).Return([]model.Item{
		{ID: 1, Name: "coffee", Price: 500, Stock: 3, IsActive: true},
		{ID: 2, Name: "tea", Price: 300, Stock: 8, IsActive: true},
	}, int64(2), nil)

	out, err := uc.ListItems(context.Background(), usecase.ListItemsInput{Page: 1, Limit: 20})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, "coffee", out.Items[0].Name)
}

// 非公開商品の詳細は404
func TestCatalogUsecase_GetItem_InactiveIsNotFound(t *testing.T) {
	uc, itemRepo := newCatalogUsecase(newMemStore())

	itemRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Item{ID: 1, Name: "coffee", IsActive: false}, nil)

	_, err := uc.GetItem(context.Background(), 1)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestCatalogUsecase_GetItem_NotFound(t *testing.T) {
	uc, itemRepo := newCatalogUsecase(newMemStore())

	itemRepo.On("FindByID", mock.Anything, int64(9)).Return(model.Item{}, repo.ErrNotFound)

	_, err := uc.GetItem(context.Background(), 9)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

// =====================
// 管理者操作
// =====================

func TestCatalogUsecase_CreateItem_Validation(t *testing.T) {
	uc, _ := newCatalogUsecase(newMemStore())

	cases := []usecase.SaveItemInput{
		{Name: "  ", Price: 100, Stock: 1},
		{Name: "coffee", Price: -1, Stock: 1},
		{Name: "coffee", Price: 100, Stock: -1},
	}
	for _, in := range cases {
		_, err := uc.CreateItem(context.Background(), 1, in)
		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, 400, he.Status)
	}
}

func TestCatalogUsecase_CreateItem(t *testing.T) {
	uc, itemRepo := newCatalogUsecase(newMemStore())

	itemRepo.On("Create", mock.Anything, mock.Anything).Return(model.Item{ID: 1, Name: "coffee", Price: 500, Stock: 3, IsActive: true}, nil)

	out, err := uc.CreateItem(context.Background(), 1, usecase.SaveItemInput{Name: " coffee ", Price: 500, Stock: 3, IsActive: true})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "coffee", out.Name)
}

// =====================
// 在庫調整
// =====================

func TestCatalogUsecase_AdjustStock_Validation(t *testing.T) {
	uc, _ := newCatalogUsecase(newMemStore())

	err := uc.AdjustStock(context.Background(), 1, 1, usecase.AdjustStockInput{Delta: 0, Reason: "restock"})
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)

	err = uc.AdjustStock(context.Background(), 1, 1, usecase.AdjustStockInput{Delta: 5, Reason: "  "})
	he, ok = usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCatalogUsecase_AdjustStock_WritesHistory(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "coffee", Price: 500, Stock: 3, IsActive: true}
	uc, _ := newCatalogUsecase(s)

	err := uc.AdjustStock(context.Background(), 9, 1, usecase.AdjustStockInput{Delta: 7, Reason: "restock"})
	assert.NoError(t, err)

	assert.Equal(t, int64(10), s.items[1].Stock)
	assert.Len(t, s.adjustments, 1)
	assert.Equal(t, int64(9), s.adjustments[0].AdminUserID)
	assert.Equal(t, int64(7), s.adjustments[0].Delta)
	assert.Equal(t, "restock", s.adjustments[0].Reason)
}

// 在庫を0未満にする調整は拒否され、履歴も残らない
func TestCatalogUsecase_AdjustStock_Underflow(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "coffee", Price: 500, Stock: 3, IsActive: true}
	uc, _ := newCatalogUsecase(s)

	err := uc.AdjustStock(context.Background(), 9, 1, usecase.AdjustStockInput{Delta: -4, Reason: "damage"})
	assert.ErrorIs(t, err, usecase.ErrStockUnderflow)

	assert.Equal(t, int64(3), s.items[1].Stock)
	assert.Empty(t, s.adjustments)
}

func TestCatalogUsecase_AdjustStock_UnknownItem(t *testing.T) {
	uc, _ := newCatalogUsecase(newMemStore())

	err := uc.AdjustStock(context.Background(), 9, 42, usecase.AdjustStockInput{Delta: 1, Reason: "restock"})
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}
