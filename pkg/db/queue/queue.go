package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/IBM/sarama"
	"github.com/erain9/pitchvolume/pkg/messaging"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const maxRetry = 5

// newSyncProducer is swapped out in tests
var newSyncProducer = sarama.NewSyncProducer

// QueueReportSender implements the ReportSender interface
// for sending protobuf encoded reports to Kafka through sarama
type QueueReportSender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewQueueReportSender connects a sync producer to brokers
func NewQueueReportSender(brokers []string, topic string) (*QueueReportSender, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = maxRetry

	producer, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return &QueueReportSender{producer: producer, topic: topic}, nil
}

// SendReport sends the report to the Kafka queue
func (q *QueueReportSender) SendReport(ctx context.Context, report *messaging.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messageBytes, err := EncodeReport(report)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.ByteEncoder(report.Key()),
		Value: sarama.ByteEncoder(messageBytes),
	}
	if _, _, err := q.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}
	return nil
}

// Close closes the producer
func (q *QueueReportSender) Close() error {
	return q.producer.Close()
}

// EncodeReport serializes a report as a protobuf Struct
func EncodeReport(report *messaging.Report) ([]byte, error) {
	top := make([]interface{}, 0, len(report.Top))
	for _, sv := range report.Top {
		top = append(top, map[string]interface{}{
			"symbol": sv.Symbol,
			"volume": float64(sv.Volume),
		})
	}

	kinds := make([]string, 0, len(report.Diagnostics))
	for k := range report.Diagnostics {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	diagnostics := make(map[string]interface{}, len(kinds))
	for _, k := range kinds {
		diagnostics[k] = float64(report.Diagnostics[k])
	}

	msg, err := structpb.NewStruct(map[string]interface{}{
		"capture":       report.Capture,
		"generatedAt":   report.GeneratedAt.UTC().Format(time.RFC3339Nano),
		"top":           top,
		"events":        float64(report.Events),
		"volume":        float64(report.Volume),
		"diagnostics":   diagnostics,
		"restingOrders": float64(report.RestingOrders),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build report message: %w", err)
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// DecodeReport parses a message produced by EncodeReport
func DecodeReport(data []byte) (*messaging.Report, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	fields := msg.GetFields()

	report := &messaging.Report{
		Capture:       fields["capture"].GetStringValue(),
		Events:        uint64(fields["events"].GetNumberValue()),
		Volume:        uint64(fields["volume"].GetNumberValue()),
		RestingOrders: int(fields["restingOrders"].GetNumberValue()),
		Diagnostics:   make(map[string]int),
	}
	if ts := fields["generatedAt"].GetStringValue(); ts != "" {
		generatedAt, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid generatedAt %q: %w", ts, err)
		}
		report.GeneratedAt = generatedAt
	}
	for _, v := range fields["top"].GetListValue().GetValues() {
		entry := v.GetStructValue().GetFields()
		report.Top = append(report.Top, messaging.SymbolVolume{
			Symbol: entry["symbol"].GetStringValue(),
			Volume: uint64(entry["volume"].GetNumberValue()),
		})
	}
	for k, v := range fields["diagnostics"].GetStructValue().GetFields() {
		report.Diagnostics[k] = int(v.GetNumberValue())
	}
	return report, nil
}

var _ messaging.ReportSender = (*QueueReportSender)(nil)
