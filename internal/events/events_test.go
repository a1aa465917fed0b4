package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 7, 3, 12, 30, 0, 0, time.UTC)

func newTestPublisher(sink Sink, prefix string) *Publisher {
	p := NewPublisher(sink, prefix)
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestPublisherSendsEnvelopeToKafka(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.Event != models.EventSuggestionCreated || env.Timestamp != fixedNow.Unix() {
			return errors.New("unexpected envelope")
		}
		var payload map[string]string
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return err
		}
		if payload["id"] != "s1" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := newTestPublisher(NewSaramaProducerFrom(producer), "foodpredict.")
	err := pub.Publish(context.Background(), models.TopicSuggestionEvents, models.EventSuggestionCreated, map[string]string{"id": "s1"})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestPublisherPropagatesKafkaFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := newTestPublisher(NewSaramaProducerFrom(producer), "")
	err := pub.Publish(context.Background(), models.TopicReportEvents, models.EventReportSent, struct{}{})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestPublisherRejectsCancelledContext(t *testing.T) {
	var buf bytes.Buffer
	pub := newTestPublisher(NewConsoleOutput(&buf), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.Publish(ctx, models.TopicScheduleEvents, models.EventSchedulePredicted, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

func TestConsoleOutputPrefixesTopic(t *testing.T) {
	var buf bytes.Buffer
	pub := newTestPublisher(NewConsoleOutput(&buf), "dev.")

	require.NoError(t, pub.Publish(context.Background(), models.TopicScheduleEvents, models.EventSchedulePredicted, []int{1, 2}))
	assert.Equal(t,
		`[dev.delivery_schedule_events] {"event":"SchedulePredicted","timestamp":1720009800,"payload":[1,2]}`+"\n",
		buf.String())
}

func TestJSONOutputPartitionsByHour(t *testing.T) {
	dir := t.TempDir()
	sink := NewJSONOutput(dir)
	pub := newTestPublisher(sink, "")
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, models.TopicReportEvents, models.EventReportSent, map[string]string{"id": "r1"}))
	require.NoError(t, pub.Publish(ctx, models.TopicReportEvents, models.EventReportResponded, map[string]string{"id": "r1"}))
	require.NoError(t, pub.Close())

	path := filepath.Join(dir, models.TopicReportEvents, "year=2024/month=07/day=03/hour=12", "data.json")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var env Envelope
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &env))
		names = append(names, env.Event)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{models.EventReportSent, models.EventReportResponded}, names)
}

func TestJSONOutputRejectsMessagesWithoutTimestamp(t *testing.T) {
	sink := NewJSONOutput(t.TempDir())
	assert.Error(t, sink.WriteMessage("topic", []byte(`{"event":"x"}`)))
	assert.Error(t, sink.WriteMessage("topic", []byte(`not json`)))
}

func TestNewSinkSelectsDestination(t *testing.T) {
	cfg := &models.Config{Output: models.OutputConfig{Destination: "file", Folder: t.TempDir()}}
	sink, err := NewSink(cfg)
	require.NoError(t, err)
	assert.IsType(t, &JSONOutput{}, sink)

	cfg.Output.Destination = "console"
	sink, err = NewSink(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleOutput{}, sink)

	cfg.Output.Destination = "carrier-pigeon"
	_, err = NewSink(cfg)
	assert.Error(t, err)
}
