package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// AlipayGateway talks to the gateway over its HTTP API. Request signing and
// the rest of the SDK surface live outside this service.
type AlipayGateway struct {
	BaseURL string
	AppID   string
	HTTP    *http.Client
}

func NewAlipayGateway(baseURL, appID string) *AlipayGateway {
	return &AlipayGateway{
		BaseURL: baseURL,
		AppID:   appID,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *AlipayGateway) PagePayURL(orderID string, amount decimal.Decimal, subject string) (string, error) {
	v := url.Values{}
	v.Set("app_id", g.AppID)
	v.Set("method", "alipay.trade.page.pay")
	v.Set("out_trade_no", orderID)
	v.Set("total_amount", amount.StringFixed(2))
	v.Set("subject", subject)
	return g.BaseURL + "?" + v.Encode(), nil
}

func (g *AlipayGateway) QueryTrade(ctx context.Context, orderID string) (TradeQuery, error) {
	v := url.Values{}
	v.Set("app_id", g.AppID)
	v.Set("method", "alipay.trade.query")
	v.Set("out_trade_no", orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+v.Encode(), nil)
	if err != nil {
		return TradeQuery{}, err
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return TradeQuery{}, fmt.Errorf("trade query: %w", err)
	}
	defer resp.Body.Close()

	var q TradeQuery
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return TradeQuery{}, fmt.Errorf("trade query decode: %w", err)
	}
	return q, nil
}
