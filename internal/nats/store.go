package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the journal of wizard activity.
	StreamName = "census_events"
	// BucketName holds client state such as the auth token.
	BucketName = "census_client"

	subjectRoot = "census"
)

// SubjectForRecord returns the wildcard subject for every event of one
// record. Example: "census.0b7c….>"
func SubjectForRecord(recordID string) string {
	return fmt.Sprintf("%s.%s.>", subjectRoot, recordID)
}

// SubjectForEvent returns the subject of one event kind for a record.
// Example: "census.0b7c….step_submitted"
func SubjectForEvent(recordID, kind string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, recordID, kind)
}

// SubjectAll matches every journal event.
func SubjectAll() string {
	return subjectRoot + ".>"
}

// SetupStream creates or updates the journal stream with 90-day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectAll()},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	})
}

// SetupKV creates or updates the client key-value bucket.
func SetupKV(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      BucketName,
		Description: "census client state",
		History:     1,
		Storage:     jetstream.FileStorage,
	})
}
