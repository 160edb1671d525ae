package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/camwatch/history-engine/internal/models"
)

// Config holds the options for the event feed.
type Config struct {
	Brokers []string
	Topic   string
	Acks    int
	Timeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventMessage is the JSON payload written for every detected event.
type EventMessage struct {
	AnalysisID string               `json:"analysis_id"`
	Folder     string               `json:"folder"`
	Timestamp  time.Time            `json:"timestamp"`
	Category   models.EventCategory `json:"category"`
	Source     string               `json:"source"`
	Message    string               `json:"message"`
	Value      string               `json:"value"`
}

// KafkaPublisher writes analysis events to a Kafka topic. Each event is keyed by
// EventKey, and per folder only events newer than the last published one are
// written, so refreshing the same window does not replay it.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	log     *slog.Logger

	mu        sync.Mutex
	published map[string]time.Time
}

var errNilWriter = errors.New("publisher requires a writer")

// NewKafkaPublisher builds a publisher with a kafka-go writer for cfg.
func NewKafkaPublisher(cfg Config, log *slog.Logger) (*KafkaPublisher, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("kafka topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		RequiredAcks:           kafka.RequiredAcks(cfg.Acks),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: false,
		WriteTimeout:           cfg.Timeout,
	}
	return newKafkaPublisher(writer, cfg.Timeout, log)
}

func newKafkaPublisher(writer messageWriter, timeout time.Duration, log *slog.Logger) (*KafkaPublisher, error) {
	if writer == nil {
		return nil, errNilWriter
	}
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaPublisher{
		writer:    writer,
		timeout:   timeout,
		log:       log.With(slog.String("component", "event_publisher")),
		published: make(map[string]time.Time),
	}, nil
}

// EventKey identifies one event of one folder, stable across analyses of
// overlapping windows.
func EventKey(folder string, ev models.SystemEvent) string {
	return strings.Join([]string{
		folder,
		ev.Source,
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
		string(ev.Category),
	}, "|")
}

// Publish writes the events of result that are newer than anything already
// published for its folder, in a single batch.
func (p *KafkaPublisher) Publish(ctx context.Context, result models.AnalysisResult) error {
	// Serialises publishes so the watermark check and update stay consistent.
	p.mu.Lock()
	defer p.mu.Unlock()

	watermark := p.published[result.Folder]
	latest := watermark
	msgs := make([]kafka.Message, 0, len(result.Events))
	for _, ev := range result.Events {
		if !ev.Timestamp.After(watermark) {
			continue
		}
		if ev.Timestamp.After(latest) {
			latest = ev.Timestamp
		}
		payload, err := json.Marshal(EventMessage{
			AnalysisID: result.ID,
			Folder:     result.Folder,
			Timestamp:  ev.Timestamp.UTC(),
			Category:   ev.Category,
			Source:     ev.Source,
			Message:    ev.Message,
			Value:      ev.Value,
		})
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(EventKey(result.Folder, ev)),
			Value: payload,
			Time:  ev.Timestamp,
		})
	}
	if len(msgs) == 0 {
		return nil
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msgs...); err != nil {
		return fmt.Errorf("write %d events: %w", len(msgs), err)
	}
	p.published[result.Folder] = latest
	p.log.Debug("events published",
		slog.String("analysis_id", result.ID),
		slog.Int("count", len(msgs)),
		slog.Int("skipped", len(result.Events)-len(msgs)),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
