package store

import (
	"context"
	"errors"

	"blink-builder-sol/internal/types"
)

var ErrNotFound = errors.New("record not found")

// 展示配置对应的模板
const (
	TemplateDonate = "donate"
	TemplateVote   = "vote"
	TemplateBlink  = "blink"
)

// DisplayConfig blink 的展示配置（标题、描述、图标、金额档位等）
type DisplayConfig struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Icon        string   `json:"icon,omitempty" yaml:"icon"`
	Amounts     []string `json:"amounts,omitempty" yaml:"amounts"`
	PublicKey   string   `json:"publicKey,omitempty" yaml:"publicKey"`
	Name        string   `json:"name,omitempty" yaml:"name"`
	Owner       string   `json:"owner,omitempty" yaml:"owner"`
	MintAddress string   `json:"mintAddress,omitempty" yaml:"mintAddress"`
}

// Listing NFT 挂单，按 (mint, seller) 唯一
type Listing struct {
	Mint          types.Pubkey
	Seller        types.Pubkey
	PriceLamports uint64
	Counterparty  types.Pubkey // 零值表示未指定买家
	CreatedAt     int64
}

// Wager 对赌记录，Challenger 为零值表示尚未有人应战
type Wager struct {
	ID         string
	Creator    types.Pubkey
	Series     string
	Side       string
	Amount     string // 原始十进制 SOL 数额，用于展示
	Lamports   uint64
	Time       string
	Challenger types.Pubkey
	CreatedAt  int64
}

func (w *Wager) Taken() bool {
	return !w.Challenger.IsZero()
}

// VoteStore 投票记录。AddVoter 是原子的 compare-and-set：
// 同一 (candidate, title) 下 voter 已存在时返回 added=false
type VoteStore interface {
	Voters(ctx context.Context, candidate, title string) ([]string, error)
	AddVoter(ctx context.Context, candidate, title, voter string) (added bool, err error)
}

type ListingStore interface {
	PutListing(ctx context.Context, l *Listing) error
	GetListing(ctx context.Context, mint, seller types.Pubkey) (*Listing, bool, error)
	DeleteListing(ctx context.Context, mint, seller types.Pubkey) error
}

// WagerStore 对赌记录。SetChallenger 仅在 challenger 为空时写入，
// 记录不存在返回 ErrNotFound，已被占用返回 (false, nil)
type WagerStore interface {
	CreateWager(ctx context.Context, w *Wager) error
	GetWager(ctx context.Context, id string) (*Wager, error)
	SetChallenger(ctx context.Context, id string, challenger types.Pubkey) (bool, error)
}

// ConfigStore 展示配置，未保存过的模板返回 ErrNotFound
type ConfigStore interface {
	GetConfig(ctx context.Context, template string) (*DisplayConfig, error)
	SaveConfig(ctx context.Context, template string, cfg *DisplayConfig) error
}
