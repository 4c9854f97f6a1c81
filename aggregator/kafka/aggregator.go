package kafka

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
)

// kafkaProducer is the subset of *kafka.Producer the aggregator needs.
type kafkaProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// Aggregator forwards every increment as a Kafka message so that a
// downstream consumer can do the counting. It cannot be queried.
type Aggregator struct {
	producer kafkaProducer
	logger   mailrec.Logger
}

var _ mailrec.Aggregator = (*Aggregator)(nil)
var _ mailrec.Loggable = (*Aggregator)(nil)

func New(p kafkaProducer) *Aggregator {
	if p == nil || reflect.ValueOf(p).IsNil() {
		panic("producer is mandatory")
	}
	return &Aggregator{
		producer: p,
		logger:   &mailrec.NopLogger{},
	}
}

func (a *Aggregator) SetLogger(l mailrec.Logger) {
	a.logger = l
}

// Increment produces one message keyed by the aggregation key. Delivery is
// asynchronous: failures reported by the broker are only logged.
func (a *Aggregator) Increment(_ context.Context, typ string, key string) error {
	internal := make(chan kafka.Event, 1)
	go func() {
		ev, ok := <-internal
		if !ok {
			return
		}
		switch m := ev.(type) {
		case *kafka.Message:
			if m.TopicPartition.Error != nil {
				a.logger.Error("delivery problem", m.TopicPartition.Error)
			} else {
				a.logger.Debug(fmt.Sprintf("delivered increment to topic %s [%d] at offset %v",
					*m.TopicPartition.Topic, m.TopicPartition.Partition, m.TopicPartition.Offset))
			}
		default:
			a.logger.Debug(fmt.Sprintf("Ignored event: %s", ev))
		}
	}()

	topic := buildTopicName(typ)
	err := a.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          []byte("1"),
		Headers: []kafka.Header{
			{Key: "id", Value: []byte(uuid.New().String())},
			{Key: "createdAt", Value: []byte(strconv.FormatInt(time.Now().UnixMilli(), 10))},
		},
	}, internal)
	if err != nil {
		// no delivery report will follow a rejected message
		close(internal)
		return fmt.Errorf("could not produce the increment: %w", err)
	}
	return nil
}

// buildTopicName builds a topic name from an aggregation type (e.g. if
// typ="mail_sent" then topic name is "mailpulse-mail-sent").
func buildTopicName(typ string) string {
	return fmt.Sprintf("mailpulse-%s", strcase.ToKebab(typ))
}
