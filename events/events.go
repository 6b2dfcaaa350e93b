/*Package events publishes mutation notifications. After a committed
create, update or delete the HTTP layer notifies a core.Notifier with
the resource name, the operation and the JSON representation of the
affected record. The default notifier logs; the Kafka notifier
publishes an event envelope to a topic.
*/
package events

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/logger"
)

// LogNotifier logs every mutation. It is the default when no Kafka
// brokers are configured.
type LogNotifier struct{}

// Notify implements core.Notifier.
func (LogNotifier) Notify(resource string, operation core.Operation, payload []byte) {
	logger.Default().WithFields(logrus.Fields{
		"resource":  resource,
		"operation": string(operation),
	}).Info("mutation")
}

// Event is the envelope published to Kafka for every mutation.
type Event struct {
	Resource  string          `json:"resource"`
	Operation core.Operation  `json:"operation"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaNotifier publishes mutation events to a Kafka topic.
type KafkaNotifier struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewKafkaNotifier creates a notifier writing to the given brokers and
// topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		timeout: 10 * time.Second,
	}
}

// Notify implements core.Notifier. Publishing happens off the request
// path; a failed publish is logged, never surfaced to the caller.
func (n *KafkaNotifier) Notify(resource string, operation core.Operation, payload []byte) {
	event := Event{
		Resource:  resource,
		Operation: operation,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		logger.Default().WithError(err).Error("cannot marshal mutation event")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		err := n.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(resource),
			Value: value,
		})
		if err != nil {
			logger.Default().WithError(err).WithFields(logrus.Fields{
				"resource":  resource,
				"operation": string(operation),
			}).Error("cannot publish mutation event")
		}
	}()
}

// Close shuts down the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
