package mq

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	defaultBatchSize  = 32 * 1024
	defaultLingerMs   = 5
	defaultPartitions = 3
)

// ProducerOption Kafka 生产者参数
type ProducerOption struct {
	Brokers    string
	Topic      string
	Partitions int
	BatchSize  int
	LingerMs   int
}

// NewKafkaProducer 确保 topic 存在后创建生产者
func NewKafkaProducer(opt ProducerOption) (*kafka.Producer, error) {
	if err := ensureTopic(opt); err != nil {
		return nil, err
	}

	batchSize := opt.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := opt.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}
	host, _ := os.Hostname()

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": opt.Brokers,
		"client.id":         fmt.Sprintf("blink-builder-%s", host),

		// 可靠性保障
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5, // 幂等场景下最大值为 5

		// 超时与重试
		"delivery.timeout.ms": 10000,
		"request.timeout.ms":  5000,
		"retries":             3,
		"retry.backoff.ms":    100,

		"batch.size":        batchSize,
		"linger.ms":         lingerMs,
		"compression.type":  "none",
		"message.max.bytes": 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

func ensureTopic(opt ProducerOption) error {
	adminClient, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": opt.Brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	meta, err := adminClient.GetMetadata(&opt.Topic, false, 10000)
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	if t, ok := meta.Topics[opt.Topic]; ok && t.Error.Code() == kafka.ErrNoError {
		return nil
	}

	replicationFactor := 1
	if len(meta.Brokers) > 1 {
		replicationFactor = 2
	}
	partitions := opt.Partitions
	if partitions <= 0 {
		partitions = defaultPartitions
	}
	logx.Infof("[Kafka] creating topic %s, partitions=%d, replication=%d", opt.Topic, partitions, replicationFactor)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	results, err := adminClient.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             opt.Topic,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	for _, r := range results {
		if code := r.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %w", r.Topic, r.Error)
		}
	}
	return nil
}
