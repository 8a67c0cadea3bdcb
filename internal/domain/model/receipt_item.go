package model

import "time"

// 後から商品価格が変わっても履歴が狂わないよう、購入時点の名前と価格を保存する。
type ReceiptItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReceiptID         int64     `gorm:"not null;index" json:"receipt_id"`
	ItemID            int64     `gorm:"not null;index" json:"item_id"`
	ItemNameSnapshot  string    `gorm:"type:varchar(255);not null" json:"item_name_snapshot"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
