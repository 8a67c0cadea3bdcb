package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"swiftshop/internal/domain/model"
	repo "swiftshop/internal/repository"
	"swiftshop/internal/usecase"

	"github.com/stretchr/testify/assert"
)

// =====================
// インメモリのTxRepos
// トランザクションはmutexで直列化し、fnがエラーならスナップショットへ巻き戻す。
// DBと同じ「全部成功か全部無しか」をテストで再現するための作り。
// =====================

type memStore struct {
	mu           sync.Mutex
	items        map[int64]model.Item
	carts        map[int64]model.Cart
	lines        map[int64][]model.CartItem    // cartID -> lines
	receipts     map[int64]model.Receipt       // receiptID -> receipt
	receiptLines map[int64][]model.ReceiptItem // receiptID -> lines
	adjustments  []model.StockAdjustment
	nextID       int64
}

func newMemStore() *memStore {
	return &memStore{
		items:        map[int64]model.Item{},
		carts:        map[int64]model.Cart{},
		lines:        map[int64][]model.CartItem{},
		receipts:     map[int64]model.Receipt{},
		receiptLines: map[int64][]model.ReceiptItem{},
		nextID:       1,
	}
}

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	cp.nextID = s.nextID
	for k, v := range s.items {
		cp.items[k] = v
	}
	for k, v := range s.carts {
		cp.carts[k] = v
	}
	for k, v := range s.lines {
		cp.lines[k] = append([]model.CartItem{}, v...)
	}
	for k, v := range s.receipts {
		cp.receipts[k] = v
	}
	for k, v := range s.receiptLines {
		cp.receiptLines[k] = append([]model.ReceiptItem{}, v...)
	}
	cp.adjustments = append([]model.StockAdjustment{}, s.adjustments...)
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.items = from.items
	s.carts = from.carts
	s.lines = from.lines
	s.receipts = from.receipts
	s.receiptLines = from.receiptLines
	s.adjustments = from.adjustments
	s.nextID = from.nextID
}

type memTxManager struct {
	s *memStore
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	saved := m.s.snapshot()
	if err := fn(&memTxRepos{s: m.s}); err != nil {
		m.s.restore(saved)
		return err
	}
	return nil
}

type memTxRepos struct{ s *memStore }

func (r *memTxRepos) Receipts() repo.ReceiptRepository         { return &memReceipts{s: r.s} }
func (r *memTxRepos) ReceiptItems() repo.ReceiptItemRepository { return &memReceiptItems{s: r.s} }
func (r *memTxRepos) Carts() repo.CartRepository               { return &memCarts{s: r.s} }
func (r *memTxRepos) CartItems() repo.CartItemRepository       { return &memCartItems{s: r.s} }
func (r *memTxRepos) Inventory() repo.InventoryRepository      { return &memInventory{s: r.s} }
func (r *memTxRepos) Items() repo.ItemRepository               { return &memItems{s: r.s} }

type memCarts struct{ s *memStore }

func (m *memCarts) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	panic("not used in checkout tests")
}

func (m *memCarts) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	for _, c := range m.s.carts {
		if c.UserID == userID && c.Status == model.CartStatusActive {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (m *memCarts) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	c, ok := m.s.carts[cartID]
	if !ok {
		return repo.ErrNotFound
	}
	c.Status = status
	m.s.carts[cartID] = c
	return nil
}

func (m *memCarts) Clear(ctx context.Context, cartID int64) error {
	if _, ok := m.s.carts[cartID]; !ok {
		return repo.ErrNotFound
	}
	m.s.lines[cartID] = nil
	return nil
}

type memCartItems struct{ s *memStore }

func (m *memCartItems) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	return append([]model.CartItem{}, m.s.lines[cartID]...), nil
}

func (m *memCartItems) FindByCartAndItem(ctx context.Context, cartID int64, itemID int64) (model.CartItem, error) {
	panic("not used in checkout tests")
}

func (m *memCartItems) UpsertByCartAndItem(ctx context.Context, cartID int64, itemID int64, addQty int64) error {
	panic("not used in checkout tests")
}

func (m *memCartItems) SetQuantity(ctx context.Context, cartID int64, itemID int64, qty int64) error {
	panic("not used in checkout tests")
}

func (m *memCartItems) DeleteByCartAndItem(ctx context.Context, cartID int64, itemID int64) error {
	panic("not used in checkout tests")
}

type memItems struct{ s *memStore }

func (m *memItems) ListPublic(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	panic("not used in checkout tests")
}

func (m *memItems) FindByID(ctx context.Context, id int64) (model.Item, error) {
	it, ok := m.s.items[id]
	if !ok {
		return model.Item{}, repo.ErrNotFound
	}
	return it, nil
}

func (m *memItems) Create(ctx context.Context, item model.Item) (model.Item, error) {
	panic("not used in checkout tests")
}

func (m *memItems) Update(ctx context.Context, item model.Item) error {
	panic("not used in checkout tests")
}

func (m *memItems) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in checkout tests")
}

type memInventory struct{ s *memStore }

func (m *memInventory) DecreaseStockIfEnough(ctx context.Context, itemID int64, qty int64) (bool, error) {
	it, ok := m.s.items[itemID]
	if !ok || it.Stock < qty {
		return false, nil
	}
	it.Stock -= qty
	m.s.items[itemID] = it
	return true, nil
}

func (m *memInventory) AdjustStock(ctx context.Context, itemID int64, delta int64) error {
	it, ok := m.s.items[itemID]
	if !ok {
		return repo.ErrNotFound
	}
	if it.Stock+delta < 0 {
		return repo.ErrStockUnderflow
	}
	it.Stock += delta
	m.s.items[itemID] = it
	return nil
}

func (m *memInventory) CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error {
	m.s.adjustments = append(m.s.adjustments, adj)
	return nil
}

type memReceipts struct{ s *memStore }

func (m *memReceipts) Create(ctx context.Context, receipt model.Receipt) (int64, error) {
	id := m.s.nextID
	m.s.nextID++
	receipt.ID = id
	m.s.receipts[id] = receipt
	return id, nil
}

func (m *memReceipts) FindByID(ctx context.Context, receiptID int64) (model.Receipt, error) {
	panic("not used in checkout tests")
}

func (m *memReceipts) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Receipt, int64, error) {
	panic("not used in checkout tests")
}

type memReceiptItems struct{ s *memStore }

func (m *memReceiptItems) CreateBulk(ctx context.Context, receiptID int64, items []model.ReceiptItem) error {
	rows := append([]model.ReceiptItem{}, items...)
	for i := range rows {
		rows[i].ReceiptID = receiptID
	}
	m.s.receiptLines[receiptID] = rows
	return nil
}

func (m *memReceiptItems) ListByReceiptID(ctx context.Context, receiptID int64) ([]model.ReceiptItem, error) {
	panic("not used in checkout tests")
}

// =====================
// テスト部品
// =====================

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("R-%04d", g.n)
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func newCheckoutUsecase(s *memStore) *usecase.CheckoutUsecase {
	return usecase.NewCheckoutUsecase(
		&memTxManager{s: s},
		&seqIDGen{},
		&fixedClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	)
}

func seedCart(s *memStore, cartID int64, userID int64, lines ...model.CartItem) {
	s.carts[cartID] = model.Cart{ID: cartID, UserID: userID, Status: model.CartStatusActive}
	s.lines[cartID] = lines
}

// =====================
// Checkout
// =====================

func TestCheckout_EmptyPaymentMethod(t *testing.T) {
	s := newMemStore()
	uc := newCheckoutUsecase(s)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "   "})
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCheckout_NoCart(t *testing.T) {
	s := newMemStore()
	uc := newCheckoutUsecase(s)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assert.Empty(t, s.receipts)
}

// 明細ゼロのカートもEmptyCart。レシートは作られない。
func TestCheckout_EmptyCart(t *testing.T) {
	s := newMemStore()
	seedCart(s, 7, 1)
	uc := newCheckoutUsecase(s)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assert.Empty(t, s.receipts)
}

// stock=5 price=10 qty=3 → stock=2, total=30
func TestCheckout_Success(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "A", Price: 10, Stock: 5, IsActive: true}
	seedCart(s, 7, 1, model.CartItem{ID: 1, CartID: 7, ItemID: 1, Quantity: 3})
	uc := newCheckoutUsecase(s)

	out, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	assert.NoError(t, err)

	assert.Equal(t, int64(30), out.Total)
	assert.Equal(t, "card", out.PaymentMethod)
	assert.NotEmpty(t, out.Number)
	assert.Len(t, out.Lines, 1)
	assert.Equal(t, int64(1), out.Lines[0].ItemID)
	assert.Equal(t, int64(10), out.Lines[0].Price)
	assert.Equal(t, int64(3), out.Lines[0].Quantity)

	//在庫が減っている
	assert.Equal(t, int64(2), s.items[1].Stock)

	//カートはクリアされ、CHECKED_OUTになっている
	assert.Empty(t, s.lines[7])
	assert.Equal(t, model.CartStatusCheckedOut, s.carts[7].Status)

	//レシートが永続化されている
	assert.Len(t, s.receipts, 1)
}

// 合計はレシート明細の qty×price の和と必ず一致する
func TestCheckout_TotalMatchesLines(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "A", Price: 10, Stock: 5, IsActive: true}
	s.items[2] = model.Item{ID: 2, Name: "B", Price: 250, Stock: 9, IsActive: true}
	seedCart(s, 7, 1,
		model.CartItem{ID: 1, CartID: 7, ItemID: 1, Quantity: 3},
		model.CartItem{ID: 2, CartID: 7, ItemID: 2, Quantity: 2},
	)
	uc := newCheckoutUsecase(s)

	out, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	assert.NoError(t, err)

	var sum int64
	for _, ln := range out.Lines {
		sum += ln.Price * ln.Quantity
	}
	assert.Equal(t, out.Total, sum)
	assert.Equal(t, int64(530), out.Total)
}

// カート追加後に値上げされても、請求は現在価格
func TestCheckout_UsesCurrentPrice(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "A", Price: 12, Stock: 5, IsActive: true}
	seedCart(s, 7, 1, model.CartItem{ID: 1, CartID: 7, ItemID: 1, Quantity: 3})
	uc := newCheckoutUsecase(s)

	out, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	assert.NoError(t, err)
	assert.Equal(t, int64(36), out.Total)
	assert.Equal(t, int64(12), out.Lines[0].Price)
}

// 1明細でも在庫不足なら全体が中断。どの商品の在庫も減らない。
func TestCheckout_InsufficientStock_NoPartialCommit(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "A", Price: 10, Stock: 5, IsActive: true}
	s.items[2] = model.Item{ID: 2, Name: "B", Price: 20, Stock: 1, IsActive: true}
	seedCart(s, 7, 1,
		model.CartItem{ID: 1, CartID: 7, ItemID: 1, Quantity: 3},
		model.CartItem{ID: 2, CartID: 7, ItemID: 2, Quantity: 2},
	)
	uc := newCheckoutUsecase(s)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})

	ise, ok := usecase.AsInsufficientStock(err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), ise.ItemID)

	//何も減っていない・何も作られていない・カートもそのまま
	assert.Equal(t, int64(5), s.items[1].Stock)
	assert.Equal(t, int64(1), s.items[2].Stock)
	assert.Empty(t, s.receipts)
	assert.Len(t, s.lines[7], 2)
	assert.Equal(t, model.CartStatusActive, s.carts[7].Status)
}

// 消えた商品・非公開商品は在庫0と同じ扱い
func TestCheckout_MissingOrInactiveItem(t *testing.T) {
	s := newMemStore()
	s.items[2] = model.Item{ID: 2, Name: "B", Price: 20, Stock: 5, IsActive: false}
	seedCart(s, 7, 1, model.CartItem{ID: 1, CartID: 7, ItemID: 9, Quantity: 1})
	seedCart(s, 8, 2, model.CartItem{ID: 2, CartID: 8, ItemID: 2, Quantity: 1})
	uc := newCheckoutUsecase(s)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	ise, ok := usecase.AsInsufficientStock(err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), ise.ItemID)

	_, err = uc.Checkout(context.Background(), 2, usecase.CheckoutInput{PaymentMethod: "card"})
	ise, ok = usecase.AsInsufficientStock(err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), ise.ItemID)
}

// 成功後の再実行はEmptyCart（二重購入にならない）
func TestCheckout_RetryAfterSuccessIsEmptyCart(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "A", Price: 10, Stock: 5, IsActive: true}
	seedCart(s, 7, 1, model.CartItem{ID: 1, CartID: 7, ItemID: 1, Quantity: 3})
	uc := newCheckoutUsecase(s)

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	assert.NoError(t, err)

	_, err = uc.Checkout(context.Background(), 1, usecase.CheckoutInput{PaymentMethod: "card"})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assert.Equal(t, int64(2), s.items[1].Stock)
	assert.Len(t, s.receipts, 1)
}

// 最後の在庫を取り合う同時チェックアウトは、ちょうど1つだけ成功する
func TestCheckout_ConcurrentLastUnits(t *testing.T) {
	s := newMemStore()
	s.items[1] = model.Item{ID: 1, Name: "A", Price: 10, Stock: 5, IsActive: true}
	seedCart(s, 7, 1, model.CartItem{ID: 1, CartID: 7, ItemID: 1, Quantity: 3})
	seedCart(s, 8, 2, model.CartItem{ID: 2, CartID: 8, ItemID: 1, Quantity: 3})
	uc := newCheckoutUsecase(s)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, err := uc.Checkout(context.Background(), userID, usecase.CheckoutInput{PaymentMethod: "card"})
			errs[i] = err
		}(i, userID)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if _, ok := usecase.AsInsufficientStock(err); ok {
			insufficient++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(2), s.items[1].Stock)
	assert.Len(t, s.receipts, 1)
}
