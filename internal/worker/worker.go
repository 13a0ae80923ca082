package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checklist-api/internal/config"
	"checklist-api/internal/models"
	"checklist-api/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type TimerLogStore interface {
	Append(ctx context.Context, l *models.TimerLog) error
}

var errInvalidCommand = errors.New("invalid timer log command")

// Delay before the first append retry; doubles up to maxRetryDelay.
var (
	retryDelay    = 500 * time.Millisecond
	maxRetryDelay = 30 * time.Second
)

// Run consumes timer-log commands and appends them to the database until ctx
// is cancelled. One consumer per process; replicas share partitions through
// the consumer group.
func Run(ctx context.Context, cfg *config.Config, store TimerLogStore) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		err = handleMessage(ctx, store, msg.Value)
		if ctx.Err() != nil {
			// Left uncommitted; the group redelivers it after restart
			return
		}
		if err != nil {
			logger.Error(ctx, "Worker dropped invalid command", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}

// handleMessage decodes one command and appends it. Undecodable or invalid
// commands fail with errInvalidCommand. Append failures are retried until they
// succeed or ctx is done.
func handleMessage(ctx context.Context, store TimerLogStore, payload []byte) error {
	var cmd models.TimerLogCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %v", errInvalidCommand, err)
	}
	if cmd.ID == "" || cmd.ChecklistID == "" || cmd.ElapsedSeconds < 0 || cmd.ElapsedSeconds > models.MaxInteger {
		return fmt.Errorf("%w %q", errInvalidCommand, cmd.ID)
	}
	l := &models.TimerLog{
		ID:             cmd.ID,
		ChecklistID:    cmd.ChecklistID,
		ElapsedSeconds: cmd.ElapsedSeconds,
	}
	delay := retryDelay
	for {
		err := store.Append(ctx, l)
		if err == nil {
			return nil
		}
		logger.Warn(ctx, "Worker append failed; retrying", "error", err, "id", cmd.ID, "delay", delay)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, maxRetryDelay)
	}
}
