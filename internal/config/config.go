package config

import (
	"time"

	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/pkg/logger"

	"github.com/zeromicro/go-zero/rest"
)

type LogConfig struct {
	Format   string `json:",default=console,options=console|json"` // 日志格式
	LogDir   string `json:",optional"`                             // 日志目录，为空时只输出到 stdout
	Level    string `json:",default=info"`                         // debug / info / warn / error
	Compress bool   `json:",optional"`                             // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// ChainConfig Solana JSON-RPC 配置
type ChainConfig struct {
	Endpoint  string `json:",default=https://api.devnet.solana.com"`
	TimeoutMs int    `json:",default=5000"` // 单次 RPC 超时，超时按网络错误处理，不重试
}

func (c *ChainConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// SwapConfig 流动性路由（Jupiter v6）配置
type SwapConfig struct {
	BaseURL     string `json:",default=https://quote-api.jup.ag/v6"`
	SlippageBps int    `json:",default=50"`
	TimeoutMs   int    `json:",default=10000"`
}

func (c *SwapConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type RedisConfig struct {
	Addr     string `json:",optional"`
	Password string `json:",optional"`
	DB       int    `json:",optional"`
}

// StoreConfig 投票 / 挂单 / 对赌 / 展示配置的存储后端
type StoreConfig struct {
	Backend     string      `json:",default=memory,options=memory|redis|postgres"`
	Redis       RedisConfig `json:",optional"`
	PostgresDSN string      `json:",optional"`
}

func (c *StoreConfig) ToStoreOption() store.Options {
	return store.Options{
		Backend:       c.Backend,
		RedisAddr:     c.Redis.Addr,
		RedisPassword: c.Redis.Password,
		RedisDB:       c.Redis.DB,
		PostgresDSN:   c.PostgresDSN,
	}
}

// KafkaConfig action 事件发布，未启用时使用空实现
type KafkaConfig struct {
	Enabled          bool   `json:",optional"`
	Brokers          string `json:",optional"` // 多个用英文逗号分隔
	Topic            string `json:",default=blink-actions"`
	Partitions       int    `json:",default=3"`
	BatchSize        int    `json:",optional"` // 批处理大小（字节）
	LingerMs         int    `json:",default=5"`
	PublishTimeoutMs int    `json:",default=3000"` // 单条事件等待 ack 的超时
}

func (c *KafkaConfig) ToProducerOption() mq.ProducerOption {
	return mq.ProducerOption{
		Brokers:    c.Brokers,
		Topic:      c.Topic,
		Partitions: c.Partitions,
		BatchSize:  c.BatchSize,
		LingerMs:   c.LingerMs,
	}
}

func (c *KafkaConfig) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutMs) * time.Millisecond
}

const (
	VoteModeMessage     = "message"
	VoteModeTransaction = "transaction"
)

type VoteConfig struct {
	Mode     string `json:",default=message,options=message|transaction"`
	Lamports uint64 `json:",optional"` // transaction 模式下自转账金额，默认 0
}

type NftConfig struct {
	RequireCreatorMatch bool `json:",optional"` // 额外校验 creators[0] == 卖家
	CreateBuyerAta      bool `json:",optional"` // 购买交易中为买家创建 ATA
}

type ActionsConfig struct {
	Vote VoteConfig
	Nft  NftConfig
}

// Config 服务主配置
type Config struct {
	rest.RestConf

	// 对外地址，用于拼接 icon 与 blink 链接
	PublicBaseURL string `json:",default=http://localhost:8888"`
	// 决定 x-blockchain-ids
	Network string `json:",default=devnet,options=devnet|mainnet"`
	// 模板默认展示配置
	TemplatesFile string `json:",default=etc/templates.yaml"`

	Logger  LogConfig
	Chain   ChainConfig
	Swap    SwapConfig
	Store   StoreConfig
	Kafka   KafkaConfig
	Actions ActionsConfig
}
