package insights

import (
	"log"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
)

const insightsTopic = "insights"

// RabbitSink publishes events on a topic exchange so downstream analytics
// consumers can pick them up.
type RabbitSink struct {
	prefix     string
	connection *amqp.Connection
}

func NewRabbitSink(url, prefix string) (*RabbitSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ret := &RabbitSink{
		prefix:     prefix,
		connection: conn,
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := defineTopic(ch, getName(prefix, insightsTopic)); err != nil {
		conn.Close()
		return nil, err
	}
	return ret, nil
}

func defineTopic(ch *amqp.Channel, name string) error {
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(
		name,  // name of the queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // noWait
		nil,   // arguments
	); err != nil {
		return err
	}
	return nil
}

func getName(prefix, topic string) string {
	return prefix + "_" + topic
}

func (s *RabbitSink) Send(event *Event) {
	bytes, err := sonic.Marshal(event)
	if err != nil {
		log.Printf("Unable to marshal insights event: %v", err)
		return
	}
	ch, err := s.connection.Channel()
	if err != nil {
		log.Printf("Unable to open insights channel: %v", err)
		return
	}
	defer ch.Close()
	name := getName(s.prefix, insightsTopic)
	if err := ch.Publish(
		name,
		name,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        bytes,
		},
	); err != nil {
		log.Printf("Unable to publish insights event: %v", err)
	}
}

func (s *RabbitSink) Close() error {
	return s.connection.Close()
}
