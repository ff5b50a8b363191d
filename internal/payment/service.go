package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dailyfresh/storefront/internal/orders"
)

// Outcome of a settlement check. Pending is a normal result: the polling
// budget ran out while the buyer had not paid, and the webhook (or a later
// check) will finish the job.
type Outcome string

const (
	OutcomePaid    Outcome = "paid"
	OutcomeFailed  Outcome = "failed"
	OutcomePending Outcome = "pending"
)

type orderStore interface {
	PayableOrder(ctx context.Context, orderID string, userID int64) (orders.Order, error)
	MarkPaid(ctx context.Context, orderID, tradeNo string) (bool, error)
}

type Service struct {
	Orders  orderStore
	Gateway Gateway

	Attempts int
	Delay    time.Duration

	sleep func(time.Duration)
}

func NewService(store orderStore, gw Gateway, attempts int, delay time.Duration) *Service {
	if attempts < 1 {
		attempts = 1
	}
	return &Service{Orders: store, Gateway: gw, Attempts: attempts, Delay: delay, sleep: time.Sleep}
}

// Pay exchanges an unpaid online order for a redirect to the hosted payment
// page.
func (s *Service) Pay(ctx context.Context, orderID string, userID int64) (string, error) {
	o, err := s.Orders.PayableOrder(ctx, orderID, userID)
	if err != nil {
		return "", err
	}
	subject := fmt.Sprintf("DailyFresh %s", o.ID)
	return s.Gateway.PagePayURL(o.ID, o.TotalPay(), subject)
}

// Check polls the gateway for settlement, at most Attempts queries with Delay
// between them while the gateway still reports awaiting payment. It never
// blocks indefinitely: an exhausted budget surfaces as OutcomePending.
func (s *Service) Check(ctx context.Context, orderID string, userID int64) (Outcome, error) {
	if _, err := s.Orders.PayableOrder(ctx, orderID, userID); err != nil {
		return "", err
	}

	for i := 0; i < s.Attempts; i++ {
		q, err := s.Gateway.QueryTrade(ctx, orderID)
		if err != nil {
			return "", err
		}
		switch {
		case q.Succeeded():
			if _, err := s.Orders.MarkPaid(ctx, orderID, q.TradeNo); err != nil {
				return "", err
			}
			return OutcomePaid, nil
		case q.Pending():
			if i == s.Attempts-1 {
				return OutcomePending, nil
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			s.sleep(s.Delay)
		default:
			return OutcomeFailed, nil
		}
	}
	return OutcomePending, nil
}

// Notify applies an asynchronous settlement confirmation from the gateway.
// Keyed on the unpaid status, a replayed callback is a no-op.
func (s *Service) Notify(ctx context.Context, orderID, tradeNo string) (bool, error) {
	applied, err := s.Orders.MarkPaid(ctx, orderID, tradeNo)
	if err != nil {
		return false, err
	}
	if !applied {
		log.Info().Str("order", orderID).Str("trade_no", tradeNo).Msg("duplicate payment notify ignored")
	}
	return applied, nil
}
