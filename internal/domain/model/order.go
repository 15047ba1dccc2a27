package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// 前進遷移はこの並びを1段ずつしか進めない
var orderStatusFlow = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

// 既知のステータスか
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CANCELLED / DELIVERED は終端
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusDelivered
}

// CanTransitionTo は状態機械が許す遷移かを判定する。
// キャンセルは PENDING からのみ、それ以外は前進1段のみ。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderStatusCancelled {
		return s == OrderStatusPending
	}
	return orderStatusFlow[s] == next
}

// 支払い方法。ラベルだけ記録する（決済連携はスコープ外）。
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentMethodPaypal         PaymentMethod = "PAYPAL"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCashOnDelivery, PaymentMethodCreditCard,
		PaymentMethodPaypal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// 注文時の配送先。住所マスタへの参照ではなく注文に埋め込んで固定する。
type ShippingAddress struct {
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Phone   string `gorm:"type:varchar(30);not null" json:"phone"`
	Street  string `gorm:"type:varchar(255);not null" json:"street"`
	City    string `gorm:"type:varchar(255);not null" json:"city"`
	State   string `gorm:"type:varchar(100)" json:"state,omitempty"`
	Country string `gorm:"type:varchar(100);not null" json:"country"`
	ZipCode string `gorm:"type:varchar(20)" json:"zip_code,omitempty"`
}

// 注文。作成後に変わるのは status と updated_at だけ。
// 監査のため削除はしない。
// 二重送信防止キーはユーザー単位で一意（他ユーザーの
// キー選択が自分の注文を妨げないように）。
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"not null;index;uniqueIndex:idx_user_idem" json:"user_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice      int64           `gorm:"not null" json:"total_price"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	IdempotencyKey  string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_idem" json:"-"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
