package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dailyfresh/storefront/internal/catalog"
	"github.com/dailyfresh/storefront/internal/redisx"
)

// Mailer delivers account emails. Actual SMTP delivery sits behind this
// interface; the storefront only submits.
type Mailer interface {
	SendActivation(ctx context.Context, email, username, token string) error
}

// LogMailer writes the activation link to the log. Stands in for the real
// delivery service outside this repo.
type LogMailer struct{ BaseURL string }

func (m LogMailer) SendActivation(ctx context.Context, email, username, token string) error {
	log.Info().
		Str("email", email).
		Str("username", username).
		Str("link", fmt.Sprintf("%s/users/activate/%s", m.BaseURL, token)).
		Msg("activation email")
	return nil
}

type indexRebuilder interface {
	RebuildIndex(ctx context.Context) (catalog.IndexSnapshot, error)
}

// Worker executes background tasks consumed from Kafka. Tasks are retried on
// error by the consumer; Redis dedup on task id keeps redelivery harmless.
type Worker struct {
	Redis   *redis.Client
	Mailer  Mailer
	Catalog indexRebuilder
	Service string
}

func (w *Worker) seen(ctx context.Context, taskID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, w.Service, taskID)
	exists, _ := redisx.Exists(ctx, w.Redis, key)
	if exists {
		return true
	}
	_ = w.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}

func (w *Worker) HandleEmail(ctx context.Context, env Envelope) error {
	if env.TaskType != TaskActivationEmail {
		return nil // ignore
	}
	if w.seen(ctx, env.TaskID) {
		return nil
	}
	p, err := UnwrapPayload[ActivationEmailPayload](env.Payload)
	if err != nil {
		return err
	}
	return w.Mailer.SendActivation(ctx, p.Email, p.Username, p.Token)
}

func (w *Worker) HandleCatalog(ctx context.Context, env Envelope) error {
	if env.TaskType != TaskRegenerateIndex {
		return nil
	}
	if w.seen(ctx, env.TaskID) {
		return nil
	}
	if _, err := w.Catalog.RebuildIndex(ctx); err != nil {
		return err
	}
	log.Info().Str("task", env.TaskID).Msg("homepage snapshot regenerated")
	return nil
}
