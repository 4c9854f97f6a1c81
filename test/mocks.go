package test

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	tally "github.com/uber-go/tally/v4"
)

type MockedTallyCounter struct {
	Ctr    int64
	Output chan int64
}

var _ tally.Counter = (*MockedTallyCounter)(nil)

func (c *MockedTallyCounter) Inc(delta int64) {
	c.Ctr += delta
	c.Output <- c.Ctr
}

// TestCounter is a goroutine safe counter usable as a recorder counter.
type TestCounter struct {
	mu  sync.Mutex
	ctr int64
}

func (c *TestCounter) Inc(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctr += delta
}

func (c *TestCounter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctr
}

// TestLogger keeps every message so that tests can assert on them.
type TestLogger struct {
	mu       sync.Mutex
	Messages []string
	Errors   []error
}

func (l *TestLogger) append(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, msg)
}

// Count returns how many messages were logged so far.
func (l *TestLogger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Messages)
}

// ErrorCount returns how many errors were logged so far.
func (l *TestLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

func (l *TestLogger) Debug(msg string) { l.append(msg) }

func (l *TestLogger) Info(msg string) { l.append(msg) }

func (l *TestLogger) Warn(msg string) { l.append(msg) }

func (l *TestLogger) Error(msg string, err error) {
	l.append(msg)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, err)
}

type MockedKafkaProducer struct {
	MockedReportToSend kafka.Event
	Snitch             chan *kafka.Message
	RetVal             error
}

func (p *MockedKafkaProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	// send the message to the outside in order to assert it.
	p.Snitch <- msg

	if p.RetVal != nil {
		return p.RetVal
	}

	// send a predefined delivery report to the delivery channel.
	if deliveryChan != nil && p.MockedReportToSend != nil {
		deliveryChan <- p.MockedReportToSend
	}

	return nil
}

type MockedKafkaEvent struct{}

func (*MockedKafkaEvent) String() string {
	return "mock"
}
