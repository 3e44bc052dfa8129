package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/model"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testCampaign() *model.Campaign {
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	return &model.Campaign{CampaignID: "c1", Name: "Stages S8", Semester: "S8", EndAt: &end}
}

func TestKafkaSender_WritesKeyedEvent(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaSender{writer: w, logger: zap.NewNop()}
	mentor := &model.Mentor{FirstName: "Alice", LastName: "Martin", Email: "alice@enib.fr"}

	require.NoError(t, s.SendCampaignCreated(context.Background(), mentor, testCampaign()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "alice@enib.fr", string(msg.Key))

	var ev CampaignCreatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "campaign_created", ev.Kind)
	assert.Equal(t, "Alice MARTIN", ev.MentorName)
	assert.Equal(t, "c1", ev.CampaignID)
	require.NotNil(t, ev.EndAt)
	assert.Equal(t, testCampaign().EndAt.UnixMilli(), *ev.EndAt)

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestKafkaSender_PropagatesWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	s := &KafkaSender{writer: w, logger: zap.NewNop()}
	mentor := &model.Mentor{Email: "bob@enib.fr"}

	err := s.SendCampaignCreated(context.Background(), mentor, testCampaign())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestSenders_RejectMissingEmail(t *testing.T) {
	s := &KafkaSender{writer: &fakeWriter{}, logger: zap.NewNop()}
	assert.ErrorIs(t, s.SendCampaignCreated(context.Background(), &model.Mentor{}, testCampaign()), ErrRecipientMissing)
	assert.ErrorIs(t, NewLogSender(zap.NewNop()).SendCampaignCreated(context.Background(), nil, testCampaign()), ErrRecipientMissing)
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "kind", Value: []byte("x")}}
	c := headerCarrier{headers: &headers}
	c.Set("traceparent", "00-abc")
	c.Set("kind", "y")

	assert.Equal(t, "00-abc", c.Get("traceparent"))
	assert.Equal(t, "y", c.Get("kind"))
	assert.ElementsMatch(t, []string{"kind", "traceparent"}, c.Keys())
}

func TestNew_SelectsDriver(t *testing.T) {
	s, err := New(&config.NotifyConfig{Driver: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = New(&config.NotifyConfig{Driver: "kafka", Brokers: []string{"localhost:9092"}, Topic: "mail"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &KafkaSender{}, s)

	_, err = New(&config.NotifyConfig{Driver: "smtp"}, zap.NewNop())
	assert.Error(t, err)
}
