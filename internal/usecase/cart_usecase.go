package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "swiftshop/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 在庫はここでは見ない（チェックアウト時にまとめて検証する方針）。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	itemRepo     repo.ItemRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	itemRepo repo.ItemRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		itemRepo:     itemRepo,
	}
}

// price は items の現在価格。カートには価格を保存しない。
type CartLineResponse struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
	Total int64              `json:"total"`
}

type AddLineInput struct {
	ItemID   int64
	Quantity int64
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddLine はカートに追加（同一商品は数量加算）。
// ここでは在庫を見ない。売り切れの判定はチェックアウトが最終権限を持つ。
func (u *CartUsecase) AddLine(ctx context.Context, userID int64, in AddLineInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, ErrInvalidQuantity
	}

	// ACTIVEカート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	// 商品チェック（公開のみ）
	item, err := u.itemRepo.FindByID(ctx, in.ItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item")
	}
	if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}
	if !item.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item")
	}

	// Upsert（同一商品は加算）
	if err := u.cartItemRepo.UpsertByCartAndItem(ctx, cart.ID, in.ItemID, in.Quantity); err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// SetQuantity は数量の置き換え。0は削除と同じ。負数は不正。
func (u *CartUsecase) SetQuantity(ctx context.Context, userID int64, itemID int64, qty int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}
	if qty < 0 {
		return CartResponse{}, ErrInvalidQuantity
	}
	if qty == 0 {
		return u.RemoveLine(ctx, userID, itemID)
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	// 商品チェック（公開のみ）
	item, err := u.itemRepo.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item")
	}
	if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}
	if !item.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item")
	}

	// 明細が無ければその数量で作る（置き換えのセマンティクス）
	err = u.cartItemRepo.SetQuantity(ctx, cart.ID, itemID, qty)
	if errors.Is(err, repo.ErrNotFound) {
		if err := u.cartItemRepo.UpsertByCartAndItem(ctx, cart.ID, itemID, qty); err != nil {
			return CartResponse{}, NewTransientStoreError(err)
		}
	} else if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// RemoveLine は明細削除。明細が無くてもエラーにしない。
func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, itemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		// カート自体が無ければ空を返すだけ
		return CartResponse{Lines: []CartLineResponse{}, Total: 0}, nil
	}
	if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	if err := u.cartItemRepo.DeleteByCartAndItem(ctx, cart.ID, itemID); err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// ComputeTotal は現在価格での合計だけを返す。値はどこにも保存しない。
func (u *CartUsecase) ComputeTotal(ctx context.Context, userID int64) (int64, error) {
	out, err := u.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return out.Total, nil
}

// cartIDの明細をまとめてCartResponseを作る。
// 価格は毎回itemsから読み直す（キャッシュしない）。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	lines, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewTransientStoreError(err)
	}

	respLines := make([]CartLineResponse, 0, len(lines))
	var total int64 = 0

	for _, ln := range lines {
		item, err := u.itemRepo.FindByID(ctx, ln.ItemID)
		if errors.Is(err, repo.ErrNotFound) {
			//商品が消えた明細は表示しない
			continue
		}
		if err != nil {
			// ストレージ障害は減った合計に化けさせず、そのまま返す
			return CartResponse{}, NewTransientStoreError(err)
		}
		if !item.IsActive {
			continue
		}

		respLines = append(respLines, CartLineResponse{
			ItemID:   ln.ItemID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: ln.Quantity,
		})

		total += item.Price * ln.Quantity
	}

	return CartResponse{Lines: respLines, Total: total}, nil
}
