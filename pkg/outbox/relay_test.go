package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

type memStore struct {
	batch  []Event
	sent   []int64
	failed map[int64]string
}

func (s *memStore) LockBatch(_ context.Context, _ string, _ int, _ time.Duration) ([]Event, error) {
	b := s.batch
	s.batch = nil
	return b, nil
}

func (s *memStore) MarkSent(_ context.Context, ids []int64) error {
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *memStore) MarkFailed(_ context.Context, id int64, errMsg string) error {
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func keyIs(key string) any {
	return mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 && string(msgs[0].Key) == key
	})
}

func TestRelayTickMarksSentAndFailed(t *testing.T) {
	producer := new(mockProducer)
	producer.On("WriteMessages", mock.Anything, keyIs("order-1")).Return(nil).Once()
	producer.On("WriteMessages", mock.Anything, keyIs("order-2")).Return(errors.New("broker down")).Once()

	store := &memStore{batch: []Event{
		{ID: 1, AggregateID: "order-1", Type: "OrderPlaced", Payload: []byte(`{}`)},
		{ID: 2, AggregateID: "order-2", Type: "OrderPlaced", Payload: []byte(`{}`)},
	}}
	relay := NewRelay(discard(), store, NewDispatcher(discard(), producer, "order.events"), "test-relay")

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int64{1}, store.sent)
	require.Equal(t, "broker down", store.failed[2])
	producer.AssertExpectations(t)
}

func TestRelayTickEmptyBatch(t *testing.T) {
	producer := new(mockProducer)
	store := &memStore{}
	relay := NewRelay(discard(), store, NewDispatcher(discard(), producer, "order.events"), "test-relay")

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	producer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestDispatchSetsHeaders(t *testing.T) {
	producer := new(mockProducer)
	producer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		got := map[string]string{}
		for _, h := range msgs[0].Headers {
			got[h.Key] = string(h.Value)
		}
		return msgs[0].Topic == "order.events" &&
			got[EventTypeHeader] == "OrderPlaced" &&
			got["traceparent"] == "00-abc-def-01" &&
			got["source"] == "marketplace-service"
	})).Return(nil).Once()

	d := NewDispatcher(discard(), producer, "order.events")
	err := d.Dispatch(context.Background(), Event{
		ID:          7,
		AggregateID: "order-7",
		Type:        "OrderPlaced",
		Headers:     map[string]string{"source": "marketplace-service"},
		Traceparent: "00-abc-def-01",
	})
	require.NoError(t, err)
	producer.AssertExpectations(t)
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	relay := NewRelay(discard(), &memStore{}, NewDispatcher(discard(), new(mockProducer), "t"), "r", WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
