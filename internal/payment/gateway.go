// Package payment adapts an Alipay-style gateway: page-pay redirects, bounded
// settlement checks, and the asynchronous confirmation webhook.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway response vocabulary, as the wire protocol spells it.
const (
	CodeOK         = "10000"
	CodeProcessing = "40004" // business processing, retry later

	TradeSuccess  = "TRADE_SUCCESS"
	TradeAwaiting = "WAIT_BUYER_PAY"
)

type TradeQuery struct {
	Code        string `json:"code"`
	TradeStatus string `json:"trade_status"`
	TradeNo     string `json:"trade_no"`
}

// Pending reports whether the gateway says the buyer has not paid yet, the
// only state worth another poll.
func (q TradeQuery) Pending() bool {
	return q.Code == CodeProcessing || (q.Code == CodeOK && q.TradeStatus == TradeAwaiting)
}

func (q TradeQuery) Succeeded() bool {
	return q.Code == CodeOK && q.TradeStatus == TradeSuccess
}

type Gateway interface {
	// PagePayURL builds the redirect URL for the hosted payment page.
	PagePayURL(orderID string, amount decimal.Decimal, subject string) (string, error)
	// QueryTrade asks the gateway for the settlement state of one order.
	QueryTrade(ctx context.Context, orderID string) (TradeQuery, error)
}
