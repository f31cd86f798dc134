// Package session persists the enumerator's local state in the embedded
// JetStream server: an append-only journal of wizard activity and the
// auth token.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/nats"
	"github.com/mark3labs/census/internal/wizard"
)

// Event is one journal entry.
type Event struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	RecordID    string           `json:"record_id"`
	Kind        wizard.EventKind `json:"kind"`
	Step        census.Step      `json:"step,omitempty"`
	CurrentStep census.Step      `json:"current_step,omitempty"`
	Status      census.Status    `json:"status,omitempty"`
	Message     string           `json:"message,omitempty"`
}

// Store writes and reads the journal.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	now    func() time.Time
}

// NewStore creates a Store on an existing stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream, now: time.Now}
}

// PublishEvent appends an event to the journal. ID and Timestamp are
// filled in when empty.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.ID == "" {
		event.ID = xid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.RecordID, string(event.Kind))
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Debug("Journal event %s for %s: seq=%d", event.Kind, event.RecordID, ack.Sequence)
	return ack, nil
}

// Record journals a wizard event. Store satisfies wizard.Recorder.
func (s *Store) Record(ctx context.Context, ev wizard.Event) error {
	_, err := s.PublishEvent(ctx, Event{
		RecordID:    ev.RecordID,
		Kind:        ev.Kind,
		Step:        ev.Step,
		CurrentStep: ev.CurrentStep,
		Status:      ev.Status,
		Message:     ev.Message,
	})
	return err
}

// History returns the journal in publish order. An empty recordID returns
// the events of every record.
func (s *Store) History(ctx context.Context, recordID string) ([]Event, error) {
	filter := nats.SubjectAll()
	if recordID != "" {
		filter = nats.SubjectForRecord(recordID)
	}

	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: filter,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	const batchSize = 500
	var events []Event
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}
			events = append(events, event)
			_ = msg.Ack()
		}
		if n < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed journal events", malformed)
	}
	return events, nil
}

// Activity summarizes the journal of one record.
type Activity struct {
	RecordID    string
	Submitted   map[census.Step]time.Time
	Rejections  int
	Failures    int
	Completed   bool
	LastEvent   time.Time
	LastMessage string
}

// Apply folds one event into the summary.
func (a *Activity) Apply(event Event) {
	if a.Submitted == nil {
		a.Submitted = make(map[census.Step]time.Time)
	}
	switch event.Kind {
	case wizard.EventStepSubmitted:
		a.Submitted[event.Step] = event.Timestamp
	case wizard.EventStepRejected:
		a.Rejections++
	case wizard.EventSubmitFailed:
		a.Failures++
	case wizard.EventRecordCompleted:
		a.Completed = true
	}
	if event.Timestamp.After(a.LastEvent) {
		a.LastEvent = event.Timestamp
	}
	if event.Message != "" {
		a.LastMessage = event.Message
	}
}

// Summarize reduces events into one Activity per record, most recent
// first.
func Summarize(events []Event) []*Activity {
	byRecord := make(map[string]*Activity)
	for _, ev := range events {
		a, ok := byRecord[ev.RecordID]
		if !ok {
			a = &Activity{RecordID: ev.RecordID}
			byRecord[ev.RecordID] = a
		}
		a.Apply(ev)
	}

	out := make([]*Activity, 0, len(byRecord))
	for _, a := range byRecord {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastEvent.After(out[j].LastEvent)
	})
	return out
}
