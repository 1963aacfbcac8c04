package poller

import (
	"context"
	"encoding/json"

	"github.com/MiulesiKulasekara/cart-service/internal/domain"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// CartEmptier is the slice of the cart service the poller needs.
type CartEmptier interface {
	EmptyCart(ctx context.Context, ownerID string) (*domain.Cart, error)
}

// Poller consumes checkout-completed events and empties the owner's
// cart once the order is placed.
type Poller struct {
	carts  CartEmptier
	reader *kafka.Reader
	logger zerolog.Logger
}

func NewPoller(carts CartEmptier, logger zerolog.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  "cart-service-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.consumeNext(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("error closing kafka reader")
	}
}

func (p *Poller) consumeNext(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("error reading message")
		return
	}
	p.handleCheckoutEvent(ctx, m.Value)
}

// handleCheckoutEvent empties the cart named by the event. EmptyCart is
// idempotent, so a replayed event is harmless.
func (p *Poller) handleCheckoutEvent(ctx context.Context, value []byte) {
	var payload struct {
		OwnerID string `json:"owner_id"`
	}
	if err := json.Unmarshal(value, &payload); err != nil {
		p.logger.Warn().Err(err).Msg("error parsing checkout event")
		return
	}
	if payload.OwnerID == "" {
		p.logger.Warn().Msg("checkout event missing owner_id")
		return
	}

	if _, err := p.carts.EmptyCart(ctx, payload.OwnerID); err != nil {
		p.logger.Error().Err(err).Str("owner_id", payload.OwnerID).Msg("failed to empty cart after checkout")
	}
}
