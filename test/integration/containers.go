//go:build integration

// Package integration runs the repositories and the outbox relay against
// real PostgreSQL and Kafka containers. Run with -tags integration.
package integration

import (
	"context"
	"net"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type Postgres struct {
	Container *postgres.PostgresContainer
	URL       string
}

func StartPostgres(ctx context.Context) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("marketplace"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, err
	}
	url, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = c.Terminate(context.Background())
		return nil, err
	}
	return &Postgres{Container: c, URL: url}, nil
}

func (p *Postgres) Terminate(ctx context.Context) {
	_ = p.Container.Terminate(ctx)
}

type Kafka struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

func StartKafka(ctx context.Context) (*Kafka, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	c, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("marketplace-test"),
	)
	if err != nil {
		return nil, err
	}
	brokers, err := c.Brokers(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		return nil, err
	}
	return &Kafka{Container: c, Brokers: brokers}, nil
}

func (k *Kafka) Terminate(ctx context.Context) {
	_ = k.Container.Terminate(ctx)
}

// CreateTopic creates a single-partition topic through the cluster controller.
func (k *Kafka) CreateTopic(topic string) error {
	conn, err := kafkago.Dial("tcp", k.Brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer cc.Close()

	return cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
}
