// Package ingester consumes trading result records from Kafka and persists
// them to Postgres in batches. Offsets are committed only after a successful
// insert, giving at-least-once delivery.
package ingester

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"

	"spimexapi/internal/model"
	"spimexapi/internal/repository"
)

const (
	pollTimeout       = 500 * time.Millisecond
	maxInsertAttempts = 3
)

// Config holds batch settings.
type Config struct {
	// BatchSize is the maximum number of records to accumulate before
	// flushing to the database.
	BatchSize int

	// BatchTimeout is the maximum time to wait before flushing a
	// non-empty batch, even if it is not full.
	BatchTimeout time.Duration
}

// Consumer is the subset of *kafka.Consumer the ingester uses.
type Consumer interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
}

type Ingester struct {
	consumer Consumer
	repo     repository.TradingResultRepository
	logger   *logrus.Logger
	cfg      Config

	now func() time.Time
}

func New(consumer Consumer, repo repository.TradingResultRepository, logger *logrus.Logger, cfg Config) *Ingester {
	return &Ingester{
		consumer: consumer,
		repo:     repo,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, accumulating records into batches and
// flushing them when the batch fills up or the timeout elapses. On shutdown
// the tail batch is flushed before returning.
func (ig *Ingester) Run(ctx context.Context) error {
	ig.logger.WithFields(logrus.Fields{
		"batchSize":    ig.cfg.BatchSize,
		"batchTimeout": ig.cfg.BatchTimeout.String(),
	}).Info("ingester started")

	batch := make([]*model.TradingResult, 0, ig.cfg.BatchSize)
	var last *kafka.Message
	deadline := ig.now().Add(ig.cfg.BatchTimeout)

	for {
		if ctx.Err() != nil {
			ig.flush(context.Background(), batch, last)
			ig.logger.Info("ingester stopped")
			return nil
		}

		msg, err := ig.consumer.ReadMessage(pollTimeout)
		switch {
		case err == nil:
			records, perr := parseMessage(msg.Value)
			if perr != nil {
				ig.logger.WithError(perr).Warn("skipping malformed message")
				// Commit so a poison message is not redelivered forever.
				if _, cerr := ig.consumer.CommitMessage(msg); cerr != nil {
					ig.logger.WithError(cerr).Error("offset commit failed")
				}
				continue
			}
			batch = append(batch, records...)
			last = msg
		case isTimeout(err):
			// No message within the poll window; fall through to the
			// deadline check.
		default:
			ig.logger.WithError(err).Error("read message failed")
			continue
		}

		if len(batch) == 0 {
			// the timeout counts from the first queued record
			deadline = ig.now().Add(ig.cfg.BatchTimeout)
			continue
		}
		if len(batch) >= ig.cfg.BatchSize || !ig.now().Before(deadline) {
			if ig.flush(ctx, batch, last) {
				batch = batch[:0]
				last = nil
			}
			deadline = ig.now().Add(ig.cfg.BatchTimeout)
		}
	}
}

// flush inserts the batch and commits the last consumed offset. Returns
// false when the insert failed, leaving the batch (and offsets) intact so
// the records are not lost.
func (ig *Ingester) flush(ctx context.Context, batch []*model.TradingResult, last *kafka.Message) bool {
	if len(batch) == 0 {
		return true
	}

	if err := ig.insertWithRetry(ctx, batch); err != nil {
		ig.logger.WithError(err).WithField("count", len(batch)).Error("batch insert failed, offsets not committed")
		return false
	}

	if last != nil {
		if _, err := ig.consumer.CommitMessage(last); err != nil {
			ig.logger.WithError(err).Error("offset commit failed")
		}
	}

	ig.logger.WithField("count", len(batch)).Info("batch inserted")
	return true
}

func (ig *Ingester) insertWithRetry(ctx context.Context, batch []*model.TradingResult) error {
	var err error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		if err = ig.repo.CreateTradingResults(ctx, batch); err == nil {
			return nil
		}
		ig.logger.WithError(err).WithField("attempt", attempt).Warn("batch insert failed, retrying")

		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return err
}

// parseMessage decodes a payload holding either one trading result or an
// array of them.
func parseMessage(value []byte) ([]*model.TradingResult, error) {
	var many []*model.TradingResult
	if err := json.Unmarshal(value, &many); err == nil && len(many) > 0 {
		return many, nil
	}

	var one model.TradingResult
	if err := json.Unmarshal(value, &one); err != nil {
		return nil, fmt.Errorf("decode trading result: %w", err)
	}
	return []*model.TradingResult{&one}, nil
}

func isTimeout(err error) bool {
	kafkaErr, ok := err.(kafka.Error)
	return ok && kafkaErr.IsTimeout()
}
