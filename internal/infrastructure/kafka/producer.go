package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/metrics"
	"github.com/medcall/clinic-queue/auth-service/internal/utils"
)

const (
	// maxStoredErrors caps the error slice so a flapping broker cannot
	// grow memory without bound
	maxStoredErrors = 100
)

// EventMirror forwards session lifecycle events to Kafka using an
// asynchronous producer. The login flow never waits on broker acks:
// delivery results are consumed by background handlers.
type EventMirror struct {
	producer sarama.AsyncProducer
	topic    string
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	wg       sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
	closed    bool
	closeMu   sync.Mutex

	errors   []error
	errorsMu sync.Mutex
}

// MirrorConfig holds configuration for the Kafka event mirror
type MirrorConfig struct {
	Brokers         []string
	Topic           string
	Logger          zerolog.Logger
	Metrics         *metrics.Metrics
	MaxMessageBytes int // default: 1MB
	MaxRetries      int // default: 5
}

// ValidateBrokers checks if Kafka brokers are accessible
func ValidateBrokers(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers specified")
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0

	client, err := sarama.NewClient(brokers, config)
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka brokers: %w", err)
	}
	defer client.Close()

	if err := client.RefreshMetadata(); err != nil {
		return fmt.Errorf("failed to refresh metadata from Kafka: %w", err)
	}

	return nil
}

// NewEventMirror creates the Kafka mirror with an async producer.
//
// Configuration highlights:
// - Asynchronous producer so finalize latency never includes broker acks
// - Snappy compression
// - Idempotent mode for at-least-once delivery with deduplication
// - Hash partitioner keyed by session_id so a session's events stay ordered
func NewEventMirror(cfg MirrorConfig) (*EventMirror, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 1000000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}

	config := sarama.NewConfig()

	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	config.Producer.Compression = sarama.CompressionSnappy

	// Idempotent mode requires WaitForAll and a single open request
	config.Producer.Idempotent = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Net.MaxOpenRequests = 1
	config.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	config.Producer.Retry.Max = cfg.MaxRetries

	// Hash by session_id keeps a session's events on one partition
	config.Producer.Partitioner = sarama.NewHashPartitioner

	config.ClientID = "auth-service-producer"
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	m := &EventMirror{
		producer: producer,
		topic:    cfg.Topic,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		errors:   make([]error, 0),
	}

	m.wg.Add(2)
	go m.handleSuccesses()
	go m.handleErrors()

	cfg.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Int("max_message_bytes", cfg.MaxMessageBytes).
		Int("max_retries", cfg.MaxRetries).
		Msg("Kafka event mirror initialized successfully")

	return m, nil
}

// SessionEvent queues a lifecycle event for mirroring. Returns an error
// only for local failures (marshalling, cancelled context); broker-side
// failures surface through the error handler.
func (m *EventMirror) SessionEvent(ctx context.Context, event entities.Event) error {
	if event.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if event.Kind == "" {
		return fmt.Errorf("event kind is required")
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled before sending: %w", ctx.Err())
	default:
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     m.topic,
		Key:       sarama.StringEncoder(event.SessionID),
		Value:     sarama.ByteEncoder(value),
		Timestamp: event.At,
	}

	select {
	case m.producer.Input() <- msg:
		m.logger.Debug().
			Str("session_id", utils.MaskSessionID(event.SessionID)).
			Str("kind", string(event.Kind)).
			Msg("Session event queued for sending to Kafka")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while sending message: %w", ctx.Err())
	}
}

func (m *EventMirror) handleSuccesses() {
	defer m.wg.Done()

	for msg := range m.producer.Successes() {
		if m.metrics != nil {
			m.metrics.EventsMirrored.Inc()
		}
		m.logger.Debug().
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Event sent to Kafka successfully")
	}

	m.logger.Info().Msg("Success handler stopped")
}

func (m *EventMirror) handleErrors() {
	defer m.wg.Done()

	for producerErr := range m.producer.Errors() {
		if m.metrics != nil {
			m.metrics.EventMirrorErrors.WithLabelValues("produce").Inc()
		}
		m.logger.Error().
			Err(producerErr.Err).
			Str("topic", producerErr.Msg.Topic).
			Msg("Failed to send event to Kafka")

		m.errorsMu.Lock()
		if len(m.errors) < maxStoredErrors {
			m.errors = append(m.errors, producerErr.Err)
		} else if len(m.errors) == maxStoredErrors {
			m.logger.Warn().
				Int("max_errors", maxStoredErrors).
				Msg("Maximum stored errors limit reached, subsequent errors will be dropped")
			m.errors = append(m.errors, fmt.Errorf("max errors limit reached, subsequent errors dropped"))
		}
		m.errorsMu.Unlock()
	}

	m.logger.Info().Msg("Error handler stopped")
}

// Healthy returns true if the mirror can still accept events
func (m *EventMirror) Healthy() bool {
	if m.producer == nil {
		return false
	}

	m.closeMu.Lock()
	isClosed := m.closed
	m.closeMu.Unlock()

	if isClosed {
		return false
	}

	m.errorsMu.Lock()
	errorCount := len(m.errors)
	m.errorsMu.Unlock()

	return errorCount < maxStoredErrors
}

// Close gracefully shuts down the mirror with a default 10-second timeout.
// Idempotent.
func (m *EventMirror) Close() error {
	return m.CloseWithTimeout(10 * time.Second)
}

// CloseWithTimeout stops accepting events, waits for pending messages to
// flush and for the handler goroutines to drain, up to the given timeout.
func (m *EventMirror) CloseWithTimeout(timeout time.Duration) error {
	m.closeOnce.Do(func() {
		m.logger.Info().
			Dur("timeout", timeout).
			Msg("Closing Kafka event mirror")

		m.closeMu.Lock()
		m.closed = true
		m.closeMu.Unlock()

		var errs []error

		// Closing the producer closes Input, Successes and Errors, which
		// unblocks both handlers after the pending messages flush
		if err := m.producer.Close(); err != nil {
			m.logger.Error().Err(err).Msg("Error closing Kafka producer")
			errs = append(errs, fmt.Errorf("producer close failed: %w", err))
		}

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			m.logger.Debug().Msg("All handler goroutines finished")
		case <-time.After(timeout):
			m.logger.Error().
				Dur("timeout", timeout).
				Msg("Timeout waiting for handlers to finish")
			errs = append(errs, fmt.Errorf("close timeout after %s: handlers did not finish in time", timeout))
		}

		m.errorsMu.Lock()
		errorCount := len(m.errors)
		m.errorsMu.Unlock()

		if errorCount > 0 {
			m.logger.Warn().
				Int("error_count", errorCount).
				Msg("Kafka event mirror closed with errors")
			errs = append(errs, fmt.Errorf("mirror had %d send errors during operation", errorCount))
		}

		m.closeMu.Lock()
		if len(errs) == 1 {
			m.closeErr = errs[0]
		} else if len(errs) > 1 {
			errMsg := "multiple errors during close:"
			for i, err := range errs {
				errMsg += fmt.Sprintf(" [%d] %v;", i+1, err)
			}
			m.closeErr = fmt.Errorf("%s", errMsg)
		} else {
			m.logger.Info().Msg("Kafka event mirror closed successfully")
		}
		m.closeMu.Unlock()
	})

	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	return m.closeErr
}
