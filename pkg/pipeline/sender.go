package pipeline

import (
	"fmt"

	"github.com/erain9/pitchvolume/config"
	"github.com/erain9/pitchvolume/pkg/db/queue"
	"github.com/erain9/pitchvolume/pkg/messaging"
	"github.com/erain9/pitchvolume/pkg/messaging/kafka"
)

// NewSender builds the report publisher selected by cfg, nil when publishing is off
func NewSender(cfg config.PublishConfig) (messaging.ReportSender, error) {
	switch cfg.Driver {
	case config.PublishNone, "":
		return nil, nil
	case config.PublishKafka:
		sender, err := kafka.NewKafkaReportSender(cfg.BrokerAddr, cfg.Topic)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case config.PublishSarama:
		sender, err := queue.NewQueueReportSender([]string{cfg.BrokerAddr}, cfg.Topic)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownPublisher, cfg.Driver)
	}
}
