package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appoutbox "quietsummit/internal/app/outbox"
)

func testRecord(id, name string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Aggregate:  "booking-1",
		Payload:    []byte(`{"booking_id":"booking-1"}`),
		OccurredAt: time.Now().UTC(),
	}
}

type capturedMessage struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	messages []capturedMessage
	fail     bool
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker unreachable")
	}
	p.messages = append(p.messages, capturedMessage{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func appendTestDoc(t *testing.T, store Store, id, name string) {
	t.Helper()
	err := store.Append(context.Background(), []EventDocument{{
		ID:         id,
		Name:       name,
		Aggregate:  "booking-1",
		Payload:    []byte(`{"booking_id":"booking-1"}`),
		Status:     StatusPending,
		OccurredAt: time.Now().UTC(),
	}})
	require.NoError(t, err)
}

func TestTopicForDerivesAggregateTopic(t *testing.T) {
	w := &Worker{}
	require.Equal(t, "booking.events.v1", w.topicFor("booking.created"))
	require.Equal(t, "payout.events.v1", w.topicFor("payout.requested"))
	require.Equal(t, "booking.events.v1", w.topicFor("booking"))

	w.TopicPrefix = "staging."
	require.Equal(t, "staging.booking.events.v1", w.topicFor("booking.created"))
}

func TestProcessOncePublishesCloudEvent(t *testing.T) {
	store := NewMemoryStore()
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "worker-1"}
	appendTestDoc(t, store, "evt-1", "booking.created")

	require.NoError(t, w.processOnce(context.Background()))
	require.Len(t, producer.messages, 1)

	msg := producer.messages[0]
	require.Equal(t, "booking.events.v1", msg.topic)
	require.Equal(t, "booking-1", msg.key)
	require.Equal(t, "application/cloudevents+json", msg.headers["content-type"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	require.Equal(t, "1.0", envelope["specversion"])
	require.Equal(t, "booking.created.v1", envelope["type"])
	require.Equal(t, "app://quietsummit", envelope["source"])
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "booking-1", data["booking_id"])

	// sent documents are not claimed again
	doc, err := store.Claim(context.Background(), "worker-1")
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestProcessOnceRetriesFailedPublish(t *testing.T) {
	store := NewMemoryStore()
	producer := &fakeProducer{fail: true}
	w := &Worker{Store: store, Producer: producer, ID: "worker-1", Backoff: []time.Duration{time.Millisecond}}
	appendTestDoc(t, store, "evt-1", "booking.created")

	require.NoError(t, w.processOnce(context.Background()))
	require.Empty(t, producer.messages)

	// after the backoff elapses the document is claimable again
	time.Sleep(5 * time.Millisecond)
	producer.fail = false
	require.NoError(t, w.processOnce(context.Background()))
	require.Len(t, producer.messages, 1)
}

func TestBufferedFlushMovesRecordsToStore(t *testing.T) {
	store := NewMemoryStore()
	buf := NewBuffered(store)
	ctx := context.Background()

	require.NoError(t, buf.Flush(ctx)) // nothing buffered, no-op

	require.NoError(t, buf.Add(ctx, testRecord("evt-1", "booking.created")))
	require.NoError(t, buf.Add(ctx, testRecord("evt-2", "booking.confirmed")))
	require.NoError(t, buf.Flush(ctx))

	first, err := store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, "evt-1", first.ID)
	require.Equal(t, StatusPending, first.Status)
}
