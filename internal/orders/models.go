package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment method codes, kept from the storefront's original enum.
const (
	PayCashOnDelivery = 1
	PayWechat         = 2
	PayAlipay         = 3
	PayUnionPay       = 4
)

func ValidPayMethod(m int) bool {
	return m >= PayCashOnDelivery && m <= PayUnionPay
}

type Order struct {
	ID           string          `json:"id"`
	UserID       int64           `json:"user_id"`
	AddressID    int64           `json:"address_id"`
	PayMethod    int             `json:"pay_method"`
	TotalCount   int             `json:"total_count"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	TransitPrice decimal.Decimal `json:"transit_price"`
	Status       Status          `json:"status"`
	TradeNo      string          `json:"trade_no,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TotalPay is the amount actually charged: goods total plus the flat transit
// surcharge.
func (o Order) TotalPay() decimal.Decimal {
	return o.TotalPrice.Add(o.TransitPrice)
}

// Line is one product snapshot inside an order. Price is the unit price at
// purchase time and never changes afterwards; only Comment is mutable.
type Line struct {
	OrderID   string          `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Count     int             `json:"count"`
	Price     decimal.Decimal `json:"price"`
	Comment   string          `json:"comment,omitempty"`
}

func (l Line) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Count)))
}
