package mq

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"blink-builder-sol/internal/types"
	"blink-builder-sol/internal/utils"
	"blink-builder-sol/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// 事件类型，写在消息前 4 字节
const (
	EventUnknown uint32 = iota
	EventDonate
	EventVote
	EventSwap
	EventNftBuy
	EventNftList
	EventWagerCreate
	EventWagerJoin
)

var eventTypes = map[string]uint32{
	"donate":       EventDonate,
	"vote":         EventVote,
	"swap":         EventSwap,
	"nft":          EventNftBuy,
	"nft-list":     EventNftList,
	"template-nft": EventNftList,
	"wager":        EventWagerCreate,
	"wager-join":   EventWagerJoin,
}

func EventTypeOf(kind string) uint32 {
	return eventTypes[kind]
}

// ActionEvent 一次成功构建的 action，供下游统计/对账
type ActionEvent struct {
	Kind         string
	Payer        types.Pubkey
	Counterparty types.Pubkey
	Asset        types.Pubkey
	Lamports     uint64
	Blockhash    string
	ExpiryHeight uint64
	At           time.Time
}

func (e *ActionEvent) fields() map[string]interface{} {
	f := map[string]interface{}{
		"kind":         e.Kind,
		"payer":        e.Payer.String(),
		"lamports":     strconv.FormatUint(e.Lamports, 10),
		"blockhash":    e.Blockhash,
		"expiryHeight": strconv.FormatUint(e.ExpiryHeight, 10),
		"at":           e.At.UnixMilli(),
	}
	if !e.Counterparty.IsZero() {
		f["counterparty"] = e.Counterparty.String()
	}
	if !e.Asset.IsZero() {
		f["asset"] = e.Asset.String()
	}
	return f
}

// Publisher 发布 action 事件
type Publisher interface {
	Publish(ctx context.Context, e *ActionEvent) error
	Close()
}

// NopPublisher 未配置 Kafka 时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *ActionEvent) error { return nil }
func (NopPublisher) Close()                                      {}

// producer *kafka.Producer 的最小子集
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type KafkaPublisher struct {
	producer   producer
	topic      string
	partitions int
	timeout    time.Duration
}

func NewKafkaPublisher(p *kafka.Producer, topic string, partitions int, timeout time.Duration) *KafkaPublisher {
	return newKafkaPublisher(p, topic, partitions, timeout)
}

func newKafkaPublisher(p producer, topic string, partitions int, timeout time.Duration) *KafkaPublisher {
	if partitions <= 0 {
		partitions = defaultPartitions
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &KafkaPublisher{producer: p, topic: topic, partitions: partitions, timeout: timeout}
}

// Publish 同步等待投递结果，超时或 ctx 取消时放弃等待
func (k *KafkaPublisher) Publish(ctx context.Context, e *ActionEvent) error {
	value, err := utils.EncodeFields(EventTypeOf(e.Kind), e.fields())
	if err != nil {
		return err
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: utils.PayerPartition(e.Payer, k.partitions),
		},
		Key:   []byte(e.Payer.String()),
		Value: value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce error: %w", err)
	}

	select {
	case ev, ok := <-deliveryChan:
		if !ok {
			return fmt.Errorf("delivery channel closed unexpectedly")
		}
		msg, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("invalid message type: %T", ev)
		}
		return msg.TopicPartition.Error
	case <-time.After(k.timeout):
		go safeDrain(deliveryChan)
		return fmt.Errorf("delivery timeout (>%v)", k.timeout)
	case <-ctx.Done():
		go safeDrain(deliveryChan)
		return fmt.Errorf("ctx cancelled: %w", ctx.Err())
	}
}

func (k *KafkaPublisher) Close() {
	if remaining := k.producer.Flush(5000); remaining > 0 {
		logger.Warnf("[Kafka] %d events not delivered before close", remaining)
	}
	k.producer.Close()
}

// safeDrain 确保 deliveryChan 被消费，避免 Kafka 回调阻塞
func safeDrain(ch <-chan kafka.Event) {
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
	}
}
