package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"blink-builder-sol/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options 存储后端参数
type Options struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostgresDSN   string
}

// Stores 各 action 使用的存储集合，同一后端同时实现全部接口
type Stores struct {
	Votes    VoteStore
	Listings ListingStore
	Wagers   WagerStore
	Configs  ConfigStore

	closers []func() error
}

func fromBackend(b interface {
	VoteStore
	ListingStore
	WagerStore
	ConfigStore
}) *Stores {
	return &Stores{Votes: b, Listings: b, Wagers: b, Configs: b}
}

// NewMemoryStores 单进程内存后端，重启即丢失
func NewMemoryStores() *Stores {
	return fromBackend(NewMemoryStore())
}

// Open 按 Backend 初始化存储
func Open(ctx context.Context, opt Options) (*Stores, error) {
	switch opt.Backend {
	case "", BackendMemory:
		logger.Warnf("[Store] using in-memory store, records are lost on restart")
		return NewMemoryStores(), nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     opt.RedisAddr,
			Password: opt.RedisPassword,
			DB:       opt.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis %s: %w", opt.RedisAddr, err)
		}
		s := fromBackend(NewRedisStore(rdb))
		s.closers = append(s.closers, rdb.Close)
		logger.Infof("[Store] redis store ready, addr=%s", opt.RedisAddr)
		return s, nil

	case BackendPostgres:
		db, err := ConnectPostgres(ctx, opt.PostgresDSN)
		if err != nil {
			return nil, err
		}
		pg := NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		s := fromBackend(pg)
		s.closers = append(s.closers, db.Close)
		logger.Infof("[Store] postgres store ready")
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", opt.Backend)
	}
}

func (s *Stores) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			logger.Warnf("[Store] close failed: %v", err)
		}
	}
}

// LoadTemplateDefaults 读取模板默认展示配置（YAML，按模板名索引）
func LoadTemplateDefaults(path string) (map[string]DisplayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template defaults: %w", err)
	}
	var out map[string]DisplayConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse template defaults %s: %w", path, err)
	}
	return out, nil
}

type defaultingConfigs struct {
	ConfigStore
	defaults map[string]DisplayConfig
}

// WithDefaults 模板未保存过配置时返回默认值
func WithDefaults(inner ConfigStore, defaults map[string]DisplayConfig) ConfigStore {
	return &defaultingConfigs{ConfigStore: inner, defaults: defaults}
}

func (d *defaultingConfigs) GetConfig(ctx context.Context, template string) (*DisplayConfig, error) {
	cfg, err := d.ConfigStore.GetConfig(ctx, template)
	if !errors.Is(err, ErrNotFound) {
		return cfg, err
	}
	def, ok := d.defaults[template]
	if !ok {
		return nil, ErrNotFound
	}
	def.Amounts = append([]string(nil), def.Amounts...)
	return &def, nil
}
