package inventory

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const tracerName = "github.com/jhoicas/inventario-ledger/internal/application/inventory"

// Option configura las dependencias opcionales de los casos de uso.
type Option func(*engine)

// WithPublisher publica eventos de stock tras cada commit.
func WithPublisher(p EventPublisher) Option {
	return func(e *engine) {
		if p != nil {
			e.events = p
		}
	}
}

// WithMetrics registra contadores del motor.
func WithMetrics(m Metrics) Option {
	return func(e *engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithLogger inyecta el logger de la aplicación.
func WithLogger(l *logger.Logger) Option {
	return func(e *engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithDefaultExpirationHours horas de vigencia de una reserva cuando el llamador no las indica.
func WithDefaultExpirationHours(h int) Option {
	return func(e *engine) {
		if h >= 0 {
			e.defaultExpirationHours = h
		}
	}
}

// engine dependencias compartidas por los casos de uso de inventario.
type engine struct {
	tx      TxRunner
	repos   TxRepos
	events  EventPublisher
	metrics Metrics
	log     *logger.Logger
	tracer  trace.Tracer
	now     func() time.Time

	defaultExpirationHours int
}

func newEngine(tx TxRunner, repos TxRepos, opts ...Option) *engine {
	e := &engine{
		tx:                     tx,
		repos:                  repos,
		events:                 NopPublisher,
		metrics:                nopMetrics{},
		log:                    logger.Nop(),
		tracer:                 otel.Tracer(tracerName),
		now:                    func() time.Time { return time.Now().UTC() },
		defaultExpirationHours: 24,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "inventory."+name, trace.WithAttributes(attrs...))
}

// endSpan cierra el span marcando el error si lo hubo.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish envía los eventos ya confirmados. Un fallo se registra y no deshace la operación.
func (e *engine) publish(ctx context.Context, events []StockEvent) {
	if len(events) == 0 {
		return
	}
	if err := e.events.Publish(ctx, events...); err != nil {
		e.log.Error().Err(err).Int("events", len(events)).Str("type", events[0].Type).
			Msg("no se pudieron publicar eventos de stock")
	}
}
