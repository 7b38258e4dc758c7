package kafka

import (
	"log"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topics carrying the cinema domain event stream. Consumers live in other
// services; this one only produces.
const (
	TopicShowtimeCreated  = "cinema.showtime.created"
	TopicShowtimeUpdated  = "cinema.showtime.updated"
	TopicShowtimeDeleted  = "cinema.showtime.deleted"
	TopicBookingCreated   = "cinema.booking.created"
	TopicBookingCancelled = "cinema.booking.cancelled"
)

func AllTopics() []string {
	return []string{
		TopicShowtimeCreated,
		TopicShowtimeUpdated,
		TopicShowtimeDeleted,
		TopicBookingCreated,
		TopicBookingCancelled,
	}
}

// EnsureTopicsExist creates the given topics if they do not already exist.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		topicConfigs := []kafka.TopicConfig{
			{
				Topic:             topic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			},
		}

		if err := controllerConn.CreateTopics(topicConfigs...); err != nil {
			if err.Error() == "kafka server: topic already exists" {
				continue
			}
			log.Printf("Error creating topic %s: %v", topic, err)
		}
	}

	// Give the brokers a moment to settle topic metadata.
	time.Sleep(1 * time.Second)
	return nil
}
