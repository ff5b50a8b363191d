package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Producer submits fire-and-forget tasks to one topic. Nothing is awaited by
// the request path: Submit enqueues into a buffered inbox and a single
// goroutine flushes to Kafka.
type Producer struct {
	w         *kafka.Writer
	name      string
	inbox     chan kafka.Message
	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewProducer(brokers []string, topic, name string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		name:    name,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.closeOnce.Do(func() { close(p.inbox) })
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					close(p.closeCh)
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Error().Err(err).Str("topic", p.w.Topic).Msg("task write failed")
	}
}

// Submit wraps the payload in a task envelope and enqueues it. The partition
// key keeps tasks for the same subject in order.
func (p *Producer) Submit(taskType, key string, payload any) {
	env := Envelope{
		TaskID:      uuid.NewString(),
		TaskType:    taskType,
		TaskVersion: 1,
		OccurredAt:  time.Now().UTC(),
		Producer:    p.name,
		Payload:     MustMarshal(payload),
	}
	p.inbox <- kafka.Message{
		Key:     PartitionKey(key),
		Value:   MustMarshal(env),
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "x-task-type", Value: []byte(taskType)}},
	}
}

// Tutup channel supaya goroutine nge-flush sisa pesan lalu exit rapi.
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.inbox) }) }

// Tunggu sampai goroutine selesai.
func (p *Producer) WaitClosed() { <-p.closeCh }
