package model

import "time"

// 購入確定の記録。作成後は変更・削除しない。
type Receipt struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Number        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"number"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	Total         int64     `gorm:"not null" json:"total"`
	PaymentMethod string    `gorm:"type:varchar(64);not null" json:"payment_method"`
	PurchasedAt   time.Time `gorm:"not null" json:"purchased_at"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
