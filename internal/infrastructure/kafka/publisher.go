package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// Publisher publica eventos de stock en un tópico Kafka. La clave es el agregado,
// así los eventos de un mismo ítem o documento quedan en la misma partición y en orden.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewPublisher crea el productor síncrono contra los brokers configurados.
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) (*Publisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = 3
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publicador kafka inicializado")
	return NewPublisherWithProducer(producer, cfg.Topic, log), nil
}

// NewPublisherWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{producer: producer, topic: topic, log: log}
}

// Publish envía los eventos en un solo lote.
func (p *Publisher) Publish(ctx context.Context, events ...inventory.StockEvent) error {
	if len(events) == 0 {
		return nil
	}
	ctx, span := otel.Tracer("kafka-publisher").Start(ctx, "kafka.publish.stock_events",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topic),
			attribute.Int("messaging.batch.message_count", len(events)),
		),
	)
	defer span.End()

	// Contexto de traza en los headers para los consumidores
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "marshal event")
			return fmt.Errorf("serializar evento %s: %w", ev.Type, err)
		}
		headers := []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(ev.Type)},
			{Key: []byte("event_id"), Value: []byte(ev.ID)},
		}
		for k, v := range carrier {
			headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic:   p.topic,
			Key:     sarama.StringEncoder(ev.AggregateID),
			Value:   sarama.ByteEncoder(body),
			Headers: headers,
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send messages")
		p.log.Error().Err(err).Str("topic", p.topic).Int("events", len(events)).
			Str("trace_id", span.SpanContext().TraceID().String()).Msg("fallo al publicar eventos")
		return fmt.Errorf("enviar eventos a kafka: %w", err)
	}
	p.log.Debug().Str("topic", p.topic).Int("events", len(events)).Str("first_type", events[0].Type).
		Msg("eventos de stock publicados")
	return nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
