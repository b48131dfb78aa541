package verifier

import (
	"context"

	"blink-builder-sol/internal/consts"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/logic/metadata"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"
)

// BalanceReader 读取 token account 余额，由 chain.Client 实现
type BalanceReader interface {
	TokenBalance(ctx context.Context, tokenAccount types.Pubkey) (uint64, bool, error)
}

// MetadataSource 解析 mint 的 Metaplex 元数据，由 metadata.Resolver 实现
type MetadataSource interface {
	Resolve(ctx context.Context, mint types.Pubkey) (*metadata.Metadata, error)
}

// Verifier 组装前的同步前置校验。
// 所有查询失败一律按“不满足”处理（fail closed），错误只记日志。
type Verifier struct {
	balances BalanceReader
	meta     MetadataSource
}

func New(balances BalanceReader, meta MetadataSource) *Verifier {
	return &Verifier{balances: balances, meta: meta}
}

// VerifyHolds owner 的 ATA 中 mint 余额恰为 1（NFT 持有）
func (v *Verifier) VerifyHolds(ctx context.Context, owner, mint types.Pubkey) bool {
	amount, ok := v.balance(ctx, owner, mint)
	return ok && amount == consts.NftAmount
}

// VerifyHoldsAtLeast 同质化代币的持有校验
func (v *Verifier) VerifyHoldsAtLeast(ctx context.Context, owner, mint types.Pubkey, min uint64) bool {
	amount, ok := v.balance(ctx, owner, mint)
	return ok && amount >= min
}

// VerifyCreator 元数据 creators[0] 是否为 owner
func (v *Verifier) VerifyCreator(ctx context.Context, owner, mint types.Pubkey) bool {
	if v.meta == nil {
		return false
	}
	md, err := v.meta.Resolve(ctx, mint)
	if err != nil {
		logger.Warnf("[Verifier] resolve metadata failed, mint=%s, err=%v", mint, err)
		return false
	}
	first, ok := md.FirstCreator()
	return ok && first == owner
}

// VerifyNotSelf a、b 不是同一身份
func VerifyNotSelf(a, b types.Pubkey) bool {
	return a != b
}

func (v *Verifier) balance(ctx context.Context, owner, mint types.Pubkey) (uint64, bool) {
	if owner.IsZero() || mint.IsZero() {
		return 0, false
	}
	ata, err := builder.AssociatedAccount(owner, mint)
	if err != nil {
		logger.Warnf("[Verifier] derive ata failed, owner=%s, mint=%s, err=%v", owner, mint, err)
		return 0, false
	}
	amount, found, err := v.balances.TokenBalance(ctx, ata)
	if err != nil {
		logger.Warnf("[Verifier] token balance lookup failed, owner=%s, mint=%s, err=%v", owner, mint, err)
		return 0, false
	}
	if !found {
		return 0, false
	}
	return amount, true
}
