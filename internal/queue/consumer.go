package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartGateConsumer connects to RabbitMQ, declares the gate.events
// queue (durable), and consumes it forever. Each event is appended to
// logs/gate.log as a single human-readable line. The function runs a
// reconnect loop with capped backoff; processing errors are logged and
// the offending message rejected without requeue so the server keeps
// operating.
func StartGateConsumer() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("gate-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("gate-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("gate-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(GateEventQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(GateEventQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("gate-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, no requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev GateEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "gate.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var line string
	switch ev.Kind {
	case KindBusRegistered, KindBusExited:
		line = fmt.Sprintf("[%s] %s | bus_id=%d | number=%q | status=%s | by=%q\n",
			ev.OccurredAt, ev.Kind, ev.BusID, ev.BusNumber, ev.Status, ev.RecordedBy)
	default:
		line = fmt.Sprintf("[%s] %s | visitor_id=%d | name=%q | purpose=%q | authority=%q | status=%s | by=%q\n",
			ev.OccurredAt, ev.Kind, ev.VisitorID, ev.Name, ev.Purpose, ev.Authority, ev.Status, ev.RecordedBy)
	}

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
