package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erain9/pitchvolume/pkg/messaging"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the sender uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReportSender implements ReportSender using Kafka, encoding reports as JSON
type KafkaReportSender struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

// NewKafkaReportSender creates a new Kafka report sender
func NewKafkaReportSender(brokerAddr, topic string) (*KafkaReportSender, error) {
	if brokerAddr == "" || topic == "" {
		return nil, fmt.Errorf("kafka sender needs a broker and a topic")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,

		// report topics are created on first publish
		AllowAutoTopicCreation: true,
	}

	return &KafkaReportSender{
		writer:  writer,
		topic:   topic,
		timeout: 5 * time.Second,
	}, nil
}

// SendReport sends a report to Kafka
func (k *KafkaReportSender) SendReport(ctx context.Context, report *messaging.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// Create a Kafka message
	msg := kafka.Message{
		Key:   report.Key(),
		Value: data,
		Time:  report.GeneratedAt,
	}

	// Send the message
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer
func (k *KafkaReportSender) Close() error {
	return k.writer.Close()
}

var _ messaging.ReportSender = (*KafkaReportSender)(nil)
