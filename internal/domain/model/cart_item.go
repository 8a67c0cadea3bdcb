package model

import "time"

// カートの明細
// 価格は持たない。合計は常にitemsの現在価格から計算する。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;index;uniqueIndex:uq_cart_item" json:"cart_id"`
	ItemID    int64     `gorm:"not null;index;uniqueIndex:uq_cart_item" json:"item_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
