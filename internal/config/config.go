package config

import (
	"fmt"

	"launch-sniper-sol/pkg/logger"
)

type LogConfig struct {
	Format   string `yaml:"format"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `yaml:"log_dir"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `yaml:"level"`    // 日志级别：debug / info / warn / error
	Compress bool   `yaml:"compress"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// GrpcConfig gRPC 客户端连接相关配置
type GrpcConfig struct {
	Endpoint string `yaml:"endpoint"` // gRPC 服务端地址
	XToken   string `yaml:"x_token"`  // x-token 认证

	// 应用级逻辑心跳（ping）配置
	StreamPingIntervalSec int `yaml:"stream_ping_interval_sec"` // 应用层 ping 心跳间隔（秒）

	// gRPC Keepalive 底层连接检测配置
	KeepalivePingIntervalSec int `yaml:"keepalive_ping_interval_sec"` // 底层 keepalive 间隔（秒）
	KeepalivePingTimeoutSec  int `yaml:"keepalive_ping_timeout_sec"`  // 底层 keepalive 超时（秒）

	// gRPC 窗口大小调优（用于大数据流推送）
	InitialWindowSize     int `yaml:"initial_window_size"`      // 单流窗口大小（字节）
	InitialConnWindowSize int `yaml:"initial_conn_window_size"` // 整体连接窗口大小（字节）

	// 消息体大小限制
	MaxCallSendMsgSize int `yaml:"max_call_send_msg_size"` // 单条消息最大发送字节数
	MaxCallRecvMsgSize int `yaml:"max_call_recv_msg_size"` // 单条消息最大接收字节数

	// 超时与重连策略
	ReconnectIntervalSec    int `yaml:"reconnect_interval_sec"`     // 重连基础间隔（秒）
	ReconnectMaxIntervalSec int `yaml:"reconnect_max_interval_sec"` // 指数退避的最大间隔（秒）
	ConnectTimeoutSec       int `yaml:"connect_timeout_sec"`        // 连接建立超时（秒）
	SendTimeoutSec          int `yaml:"send_timeout_sec"`           // 发送超时（秒）
	TxRecvTimeoutSec        int `yaml:"tx_recv_timeout_sec"`        // 超过该时间未收到交易则触发重连（秒）
}

// DetectorConfig 捆绑检测状态机参数
type DetectorConfig struct {
	WindowSlots        uint64 `yaml:"window_slots"`         // 检测窗口（slot 距离，从 creation_slot 起算）
	MinDistinctWallets int    `yaml:"min_distinct_wallets"` // 触发 Qualified 的去重钱包数阈值
	MaxTrackedBundles  int    `yaml:"max_tracked_bundles"`  // 同时跟踪的 Bundle 容量上限
	RetentionSlots     uint64 `yaml:"retention_slots"`      // 终态后用于去重抑制的保留窗口（slot）
	SweepIntervalSec   int    `yaml:"sweep_interval_sec"`   // 过期扫描周期（秒）
}

// FilterConfig 过滤规则参数（均为对 Qualified Bundle 的纯函数判定）
type FilterConfig struct {
	MaxWalletDominancePct int `yaml:"max_wallet_dominance_pct"` // 单钱包贡献金额占比上限（百分比）

	DevBuyCheck  bool    `yaml:"dev_buy_check"`   // 是否启用创建者自买上限规则
	DevBuyMaxSol float64 `yaml:"dev_buy_max_sol"` // 创建者自买金额上限（SOL）

	TokenNameCheck bool     `yaml:"token_name_check"` // 是否启用代币名称匹配规则
	NameAllowList  []string `yaml:"name_allow_list"`  // 名称允许子串，空列表表示不限制
	NameDenyList   []string `yaml:"name_deny_list"`   // 名称拒绝子串

	SocialCheck bool `yaml:"social_check"` // 是否要求元数据存在社交链接（由外部元数据提供方给出）

	ListsFile string `yaml:"lists_file"` // 可选：allow/deny 列表的独立 YAML 文件，非空时覆盖上面两个列表
}

// TradeConfig 下单参数，全部来自静态配置，不做链上查询
type TradeConfig struct {
	BuySolAmount             float64 `yaml:"buy_sol_amount"`              // 单次买入金额（SOL）
	SlippagePct              float64 `yaml:"slippage_pct"`                // 滑点（百分比，如 5.0 表示 5%）
	ComputeUnits             uint64  `yaml:"compute_units"`               // 交易 compute unit 上限
	PriorityFeeMicroLamports uint64  `yaml:"priority_fee_micro_lamports"` // 优先费（micro-lamports / CU）
	IntentTTLMs              int     `yaml:"intent_ttl_ms"`               // TradeIntent 过期时间（毫秒）
}

// KafkaProducerConfig Kafka 生产者相关配置（交易意图外发通道）
type KafkaProducerConfig struct {
	Brokers   string `yaml:"brokers"`    // Kafka broker 地址，多个用英文逗号分隔
	BatchSize int    `yaml:"batch_size"` // 批处理大小（单位字节）
	LingerMs  int    `yaml:"linger_ms"`  // 批处理最大延迟（毫秒）

	Topics struct {
		Intent string `yaml:"intent"` // 交易意图的 Kafka topic
	} `yaml:"topics"`

	Partitions struct {
		Intent int `yaml:"intent"` // intent topic 的分区数
	} `yaml:"partitions"`

	SendTimeoutMs int `yaml:"send_timeout_ms"` // 单条消息发送并等待 ack 的超时时间（毫秒）
}

// DedupConfig 签名去重配置。Redis 可选，不配置时仅使用进程内缓存。
type DedupConfig struct {
	RedisAddr string `yaml:"redis_addr"` // Redis 地址，空表示禁用 Redis 去重
	TTLSec    int    `yaml:"ttl_sec"`    // Redis 去重键过期时间（秒）
	MemoryCap int    `yaml:"memory_cap"` // 进程内近期签名缓存容量
}

// SniperConfig 是主配置结构体，用于驱动捕获-检测-下单流水线
type SniperConfig struct {
	LogConf           LogConfig           `yaml:"logger"`         // 日志配置
	Grpc              GrpcConfig          `yaml:"grpc"`           // gRPC 订阅配置
	DetectorConf      DetectorConfig      `yaml:"detector"`       // 捆绑检测配置
	FilterConf        FilterConfig        `yaml:"filter"`         // 过滤规则配置
	TradeConf         TradeConfig         `yaml:"trade"`          // 下单参数配置
	KafkaProducerConf KafkaProducerConfig `yaml:"kafka_producer"` // Kafka 生产者配置
	DedupConf         DedupConfig         `yaml:"dedup"`          // 签名去重配置

	MonitorReportIntervalSec int `yaml:"monitor_report_interval_sec"` // 运行指标日志输出周期（秒）
}

// Validate 启动期校验。任何配置非法都应在订阅建立前直接失败。
// 数值边界沿用上游交易习惯：买入 0.0001~10 SOL、滑点 0.1%~100%、CU 5万~140万。
func (c *SniperConfig) Validate() error {
	if c.Grpc.Endpoint == "" {
		return fmt.Errorf("grpc.endpoint is required")
	}

	d := c.DetectorConf
	if d.WindowSlots == 0 {
		return fmt.Errorf("detector.window_slots must be > 0")
	}
	if d.MinDistinctWallets <= 0 {
		return fmt.Errorf("detector.min_distinct_wallets must be > 0")
	}
	if d.MaxTrackedBundles <= 0 {
		return fmt.Errorf("detector.max_tracked_bundles must be > 0")
	}

	t := c.TradeConf
	if t.BuySolAmount < 0.0001 || t.BuySolAmount > 10.0 {
		return fmt.Errorf("trade.buy_sol_amount out of range: %v (want 0.0001~10 SOL)", t.BuySolAmount)
	}
	if t.SlippagePct < 0.1 || t.SlippagePct > 100.0 {
		return fmt.Errorf("trade.slippage_pct out of range: %v (want 0.1~100)", t.SlippagePct)
	}
	if t.ComputeUnits < 50_000 || t.ComputeUnits > 1_400_000 {
		return fmt.Errorf("trade.compute_units out of range: %d (want 50k~1.4M)", t.ComputeUnits)
	}
	if t.PriorityFeeMicroLamports == 0 {
		return fmt.Errorf("trade.priority_fee_micro_lamports must be > 0")
	}
	if t.IntentTTLMs <= 0 {
		return fmt.Errorf("trade.intent_ttl_ms must be > 0")
	}

	f := c.FilterConf
	if f.MaxWalletDominancePct < 0 || f.MaxWalletDominancePct > 100 {
		return fmt.Errorf("filter.max_wallet_dominance_pct out of range: %d", f.MaxWalletDominancePct)
	}
	if f.DevBuyCheck && f.DevBuyMaxSol <= 0 {
		return fmt.Errorf("filter.dev_buy_max_sol must be > 0 when dev_buy_check is enabled")
	}
	return nil
}
