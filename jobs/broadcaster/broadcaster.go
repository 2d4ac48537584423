// Package broadcaster drains the event outbox to Kafka with
// at-least-once delivery: entries are marked SENT before the publish
// and ACKED (then deleted) only after the broker confirms.
package broadcaster

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"tycho/infra/outbox"
)

type Broadcaster struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
}

func New(ob *outbox.Outbox, brokers []string, topic string, interval time.Duration) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		outbox:   ob,
		producer: producer,
		topic:    topic,
		interval: interval,
	}, nil
}

// Run drains the outbox until the context ends.
func (b *Broadcaster) Run(ctx context.Context) {
	log.Println("[broadcaster] started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.drainOnce()
		}
	}
}

func (b *Broadcaster) drainOnce() {
	// Re-send anything stuck in SENT from a previous crash first, then
	// the new entries. Duplicates are possible; consumers dedupe on seq.
	for _, state := range []outbox.State{outbox.StateSent, outbox.StateNew} {
		_ = b.outbox.ScanState(state, func(rec outbox.Record) error {
			if err := b.outbox.UpdateState(rec.Seq, outbox.StateSent, rec.Retries); err != nil {
				return nil
			}

			msg := &sarama.ProducerMessage{
				Topic: b.topic,
				Key:   sarama.StringEncoder(strconv.FormatUint(rec.Seq, 10)),
				Value: sarama.ByteEncoder(rec.Payload),
			}
			if _, _, err := b.producer.SendMessage(msg); err != nil {
				_ = b.outbox.UpdateState(rec.Seq, outbox.StateFailed, rec.Retries+1)
				return nil // retry on a later tick
			}

			if err := b.outbox.UpdateState(rec.Seq, outbox.StateAcked, rec.Retries); err != nil {
				return nil
			}
			return b.outbox.Delete(rec.Seq)
		})
	}

	// Failed entries go back to NEW so the next tick retries them.
	_ = b.outbox.ScanState(outbox.StateFailed, func(rec outbox.Record) error {
		return b.outbox.UpdateState(rec.Seq, outbox.StateNew, rec.Retries)
	})
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
