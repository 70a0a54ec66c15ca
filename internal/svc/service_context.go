package svc

import (
	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/dedup"
	"launch-sniper-sol/internal/logic/bundle"
	"launch-sniper-sol/internal/logic/filter"
	"launch-sniper-sol/internal/logic/trade"
	"launch-sniper-sol/internal/monitor"
	"launch-sniper-sol/internal/mq"
	"launch-sniper-sol/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// ServiceContext 聚合流水线的共享资源
type ServiceContext struct {
	Config   config.SniperConfig
	Metrics  *monitor.Metrics
	Dedup    *dedup.Store
	Tracker  *bundle.Tracker
	Engine   *filter.Engine
	Emitter  *trade.Emitter
	Producer *kafka.Producer
	Executor *mq.IntentExecutor
}

// NewServiceContext 创建服务上下文。
// 元数据提供方（社交链接）暂未接入，social_check 在无提供方时自动跳过。
func NewServiceContext(c config.SniperConfig) (*ServiceContext, error) {
	// 1. 初始化 Kafka 生产者
	producer, err := mq.NewKafkaProducer(c.KafkaProducerConf)
	if err != nil {
		logger.Errorf("Kafka producer 初始化失败: %v", err)
		return nil, err
	}
	executor := mq.NewIntentExecutor(producer, c.KafkaProducerConf)

	// 2. 过滤引擎（lists_file 解析失败视为启动失败）
	engine, err := filter.NewEngine(c.FilterConf, c.DetectorConf.MinDistinctWallets, nil)
	if err != nil {
		logger.Errorf("过滤引擎初始化失败: %v", err)
		producer.Close()
		return nil, err
	}

	// 3. 组装流水线组件
	metrics := monitor.New()
	ctx := &ServiceContext{
		Config:   c,
		Metrics:  metrics,
		Dedup:    dedup.NewStore(c.DedupConf),
		Tracker:  bundle.NewTracker(c.DetectorConf, metrics),
		Engine:   engine,
		Emitter:  trade.NewEmitter(c.TradeConf, executor, metrics),
		Producer: producer,
		Executor: executor,
	}

	logger.Infof("服务上下文初始化完成")
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Executor != nil {
		ctx.Executor.Close()
	}
	if ctx.Dedup != nil {
		ctx.Dedup.Close()
	}
}
