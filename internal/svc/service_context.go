package svc

import (
	"context"
	"errors"
	"os"

	"blink-builder-sol/internal/chain"
	"blink-builder-sol/internal/config"
	"blink-builder-sol/internal/logic/assembler"
	"blink-builder-sol/internal/logic/metadata"
	"blink-builder-sol/internal/logic/swap"
	"blink-builder-sol/internal/logic/verifier"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/pkg/logger"
)

// ServiceContext 包含 HTTP 服务依赖的资源
type ServiceContext struct {
	Config    config.Config
	Chain     *chain.Client
	Assembler *assembler.Assembler
	Verifier  *verifier.Verifier
	Metadata  verifier.MetadataSource
	Router    *swap.Router
	Stores    *store.Stores
	Publisher mq.Publisher
}

// NewServiceContext 按配置初始化所有依赖
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	// 1. 链上 RPC
	chainClient, err := chain.NewClient(c.Chain.Endpoint, c.Chain.Timeout())
	if err != nil {
		logger.Errorf("[Svc] chain client 初始化失败: %v", err)
		return nil, err
	}
	resolver := metadata.NewResolver(chainClient)

	// 2. 存储 + 模板默认配置
	stores, err := store.Open(context.Background(), c.Store.ToStoreOption())
	if err != nil {
		logger.Errorf("[Svc] store 初始化失败: %v", err)
		return nil, err
	}
	defaults, err := store.LoadTemplateDefaults(c.TemplatesFile)
	switch {
	case err == nil:
		stores.Configs = store.WithDefaults(stores.Configs, defaults)
	case errors.Is(err, os.ErrNotExist):
		logger.Warnf("[Svc] templates file %s not found, built-in defaults only", c.TemplatesFile)
	default:
		stores.Close()
		return nil, err
	}

	// 3. 事件发布
	var publisher mq.Publisher = mq.NopPublisher{}
	if c.Kafka.Enabled {
		producer, err := mq.NewKafkaProducer(c.Kafka.ToProducerOption())
		if err != nil {
			logger.Errorf("[Svc] Kafka producer 初始化失败: %v", err)
			stores.Close()
			return nil, err
		}
		publisher = mq.NewKafkaPublisher(producer, c.Kafka.Topic, c.Kafka.Partitions, c.Kafka.PublishTimeout())
	}

	ctx := &ServiceContext{
		Config:    c,
		Chain:     chainClient,
		Assembler: assembler.New(chainClient),
		Verifier:  verifier.New(chainClient, resolver),
		Metadata:  resolver,
		Router:    swap.NewRouter(c.Swap.BaseURL, c.Swap.SlippageBps, c.Swap.Timeout()),
		Stores:    stores,
		Publisher: publisher,
	}

	logger.Infof("[Svc] 服务上下文初始化完成, network=%s, store=%s, kafka=%v",
		c.Network, c.Store.Backend, c.Kafka.Enabled)
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Publisher != nil {
		ctx.Publisher.Close()
	}
	if ctx.Stores != nil {
		ctx.Stores.Close()
	}
}
