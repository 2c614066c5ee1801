// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/danielhkuo/club-leaderboard/models"
)

// DefaultTopic is the topic leaderboard events are written to
const DefaultTopic = "leaderboard.updated"

// LeaderboardUpdated is published after a sync commits a new contest.
type LeaderboardUpdated struct {
	ContestID    string           `json:"contestId"`
	ContestTitle string           `json:"contestTitle,omitempty"`
	RunID        string           `json:"runId"`
	Entries      []models.Ranking `json:"entries"`
	Timestamp    string           `json:"timestamp"`
}

// NewLeaderboardUpdated builds the event for a committed sync run
func NewLeaderboardUpdated(contestID int64, title, runID string, rankings []models.Ranking, at time.Time) LeaderboardUpdated {
	if rankings == nil {
		rankings = []models.Ranking{}
	}
	return LeaderboardUpdated{
		ContestID:    strconv.FormatInt(contestID, 10),
		ContestTitle: title,
		RunID:        runID,
		Entries:      rankings,
		Timestamp:    at.UTC().Format(time.RFC3339),
	}
}

type Publisher interface {
	PublishLeaderboardUpdated(ctx context.Context, event LeaderboardUpdated) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishLeaderboardUpdated(context.Context, LeaderboardUpdated) error { return nil }
func (NopPublisher) Close() error                                                       { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by contest id.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

func (p *KafkaPublisher) PublishLeaderboardUpdated(ctx context.Context, event LeaderboardUpdated) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ContestID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish leaderboard event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
