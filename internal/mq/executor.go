package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/logic/trade"
	"launch-sniper-sol/pkg/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/mr-tron/base58"
)

// IntentExecutor 把 TradeIntent 序列化为 JSON 写入 Kafka。
// 按 mint 做分区哈希，保证同一 mint 的消息落在同一分区（下游消费有序）。
type IntentExecutor struct {
	producer   *kafka.Producer
	topic      string
	partitions uint32
	timeout    time.Duration
}

func NewIntentExecutor(producer *kafka.Producer, cfg config.KafkaProducerConfig) *IntentExecutor {
	timeout := time.Duration(cfg.SendTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IntentExecutor{
		producer:   producer,
		topic:      cfg.Topics.Intent,
		partitions: uint32(cfg.Partitions.Intent),
		timeout:    timeout,
	}
}

func (e *IntentExecutor) Submit(ctx context.Context, intent *trade.TradeIntent) error {
	value, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	mintBytes, err := base58.Decode(intent.Mint)
	if err != nil {
		return fmt.Errorf("decode mint %s: %w", intent.Mint, err)
	}

	return SendKafkaJob(ctx, e.producer, &KafkaJob{
		Topic:     e.topic,
		Partition: int32(utils.PartitionHashBytes(mintBytes, e.partitions)),
		Key:       []byte(intent.Mint),
		Value:     value,
	}, e.timeout)
}

func (e *IntentExecutor) Close() {
	// 给在途消息最后的冲刷机会
	e.producer.Flush(3000)
	e.producer.Close()
}
