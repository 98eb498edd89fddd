package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/cache"
)

// Consumer listens for checkout-completed events and drops the cached
// cart view for the affected user, so the next read shows the emptied
// cart without waiting out the freshness window.
type Consumer struct {
	reader *kafka.Reader
	store  cache.CartCache
	log    logrus.FieldLogger
}

func NewConsumer(store cache.CartCache, log logrus.FieldLogger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  "storefront-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, store: store, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if stopReading(ctx, err) {
				return
			}
			c.log.WithError(err).Warn("read checkout event failed")
			continue
		}
		c.handle(ctx, m.Value)
	}
}

// stopReading reports whether the read loop should exit: the context is
// done, or the reader itself was closed (ReadMessage then returns
// io.EOF) and retrying would spin forever.
func stopReading(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, io.EOF)
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.WithError(err).Warn("close kafka reader failed")
	}
}

// handle invalidates the cart view named by one event payload.
func (c *Consumer) handle(ctx context.Context, payload []byte) {
	var event struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		c.log.WithError(err).Warn("parse checkout event failed")
		return
	}
	if event.UserID == "" {
		c.log.Warn("checkout event missing user_id")
		return
	}

	if err := c.store.Delete(ctx, event.UserID); err != nil {
		c.log.WithError(err).WithField("user_id", event.UserID).Warn("invalidate cart after checkout failed")
		return
	}
	c.log.WithField("user_id", event.UserID).Info("cart view invalidated after checkout")
}
