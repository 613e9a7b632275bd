package poller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/fjod/go_bakery/internal/publisher"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// SnapshotDeleter removes the persisted cart of a session unless it was saved
// at or after savedBefore.
type SnapshotDeleter interface {
	DeleteSavedBefore(ctx context.Context, sessionID string, savedBefore time.Time) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Poller consumes submitted orders and drops the saved cart they came from
// when nothing was saved to it after the order was placed.
type Poller struct {
	snapshots SnapshotDeleter
	reader    messageReader
	logger    *zap.Logger
}

func NewPoller(snapshots SnapshotDeleter, logger *zap.Logger, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.OrderSubmittedTopic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(snapshots, reader, logger)
}

func newPoller(snapshots SnapshotDeleter, reader messageReader, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{snapshots: snapshots, reader: reader, logger: logger}
}

// Run consumes until ctx is cancelled or the reader is closed.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.handleNext(ctx); errors.Is(err, io.EOF) {
			return
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("error closing reader", zap.Error(err))
	}
}

type orderSubmitted struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (p *Poller) handleNext(ctx context.Context) error {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, io.EOF) {
			p.logger.Warn("error reading message", zap.Error(err))
		}
		return err
	}

	var event orderSubmitted
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.logger.Warn("error parsing message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if event.SessionID == "" {
		p.logger.Warn("missing session_id", zap.String("order_id", event.ID))
		return nil
	}
	if event.SubmittedAt.IsZero() {
		p.logger.Warn("missing submitted_at", zap.String("order_id", event.ID))
		return nil
	}

	if err := p.snapshots.DeleteSavedBefore(ctx, event.SessionID, event.SubmittedAt); err != nil {
		p.logger.Warn("failed to delete cart",
			zap.String("order_id", event.ID),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
		return nil
	}

	p.logger.Debug("stale cart cleaned up after submission",
		zap.String("order_id", event.ID),
		zap.String("session_id", event.SessionID),
	)
	return nil
}
