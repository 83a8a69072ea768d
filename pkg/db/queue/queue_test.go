package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/erain9/pitchvolume/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *messaging.Report {
	return &messaging.Report{
		Capture:     "pitch_example_data",
		GeneratedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Top: []messaging.SymbolVolume{
			{Symbol: "OIH", Volume: 5000},
			{Symbol: "SPY", Volume: 2000},
		},
		Events:        1200,
		Volume:        7000,
		Diagnostics:   map[string]int{"missing_order": 2, "trade_side": 1},
		RestingOrders: -1,
	}
}

func withMockProducer(t *testing.T, prod *mockProducer) {
	oldNewSyncProducer := newSyncProducer
	t.Cleanup(func() { newSyncProducer = oldNewSyncProducer })
	newSyncProducer = func(addrs []string, config *sarama.Config) (sarama.SyncProducer, error) {
		assert.True(t, config.Producer.Return.Successes, "sync producers need successes")
		return prod, nil
	}
}

func TestQueueReportSender_SendReport(t *testing.T) {
	mockProd := &mockProducer{}
	withMockProducer(t, mockProd)

	sender, err := NewQueueReportSender([]string{"localhost:9092"}, "pitch-top-volume")
	require.NoError(t, err)

	require.NoError(t, sender.SendReport(context.Background(), testReport()))
	require.Len(t, mockProd.sentMessages, 1)

	msg := mockProd.sentMessages[0]
	require.Equal(t, "pitch-top-volume", msg.Topic)
	require.Equal(t, sarama.ByteEncoder("pitch_example_data"), msg.Key)

	decoded, err := DecodeReport(msg.Value.(sarama.ByteEncoder))
	require.NoError(t, err)
	assert.Equal(t, testReport(), decoded)

	require.NoError(t, sender.Close())
	assert.True(t, mockProd.closed)
}

func TestQueueReportSender_ProducerError(t *testing.T) {
	boom := errors.New("no brokers")
	oldNewSyncProducer := newSyncProducer
	defer func() { newSyncProducer = oldNewSyncProducer }()
	newSyncProducer = func([]string, *sarama.Config) (sarama.SyncProducer, error) {
		return nil, boom
	}

	_, err := NewQueueReportSender([]string{"localhost:9092"}, "t")
	assert.ErrorIs(t, err, boom)
}

func TestQueueReportSender_SendError(t *testing.T) {
	boom := errors.New("leader not available")
	mockProd := &mockProducer{err: boom}
	withMockProducer(t, mockProd)

	sender, err := NewQueueReportSender([]string{"localhost:9092"}, "t")
	require.NoError(t, err)

	err = sender.SendReport(context.Background(), testReport())
	assert.ErrorIs(t, err, boom)
}

func TestQueueReportSender_CanceledContext(t *testing.T) {
	mockProd := &mockProducer{}
	withMockProducer(t, mockProd)

	sender, err := NewQueueReportSender([]string{"localhost:9092"}, "t")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.SendReport(ctx, testReport()), context.Canceled)
	assert.Empty(t, mockProd.sentMessages)
}

func TestDecodeReport_Garbage(t *testing.T) {
	_, err := DecodeReport([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}
