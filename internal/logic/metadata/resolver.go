package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blink-builder-sol/internal/types"

	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
)

var ErrNotFound = errors.New("token metadata not found")

// AccountReader 读取账户原始数据，由 chain.Client 实现
type AccountReader interface {
	AccountData(ctx context.Context, addr types.Pubkey) ([]byte, error)
}

type Creator struct {
	Address  types.Pubkey
	Verified bool
	Share    uint8
}

// Metadata Metaplex 元数据中 blink 展示所需的字段
type Metadata struct {
	Mint                 types.Pubkey
	UpdateAuthority      types.Pubkey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// FirstCreator 返回 creators[0]，没有 creator 时 ok=false
func (m *Metadata) FirstCreator() (types.Pubkey, bool) {
	if m == nil || len(m.Creators) == 0 {
		return types.Pubkey{}, false
	}
	return m.Creators[0].Address, true
}

type Resolver struct {
	accounts AccountReader
	decode   func([]byte) (token_metadata.Metadata, error)
}

func NewResolver(accounts AccountReader) *Resolver {
	return &Resolver{
		accounts: accounts,
		decode:   token_metadata.MetadataDeserialize,
	}
}

// Resolve mint -> metadata PDA -> 账户数据 -> 反序列化
func (r *Resolver) Resolve(ctx context.Context, mint types.Pubkey) (*Metadata, error) {
	pda, err := token_metadata.GetTokenMetaPubkey(mint.ToCommon())
	if err != nil {
		return nil, fmt.Errorf("derive metadata pda for %s: %w", mint, err)
	}

	data, err := r.accounts.AccountData(ctx, types.FromCommon(pda))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: mint=%s", ErrNotFound, mint)
	}

	raw, err := r.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", mint, err)
	}
	return fromRaw(raw), nil
}

func fromRaw(raw token_metadata.Metadata) *Metadata {
	md := &Metadata{
		Mint:                 types.FromCommon(raw.Mint),
		UpdateAuthority:      types.FromCommon(raw.UpdateAuthority),
		Name:                 trimPadding(raw.Data.Name),
		Symbol:               trimPadding(raw.Data.Symbol),
		URI:                  trimPadding(raw.Data.Uri),
		SellerFeeBasisPoints: raw.Data.SellerFeeBasisPoints,
	}
	if raw.Data.Creators != nil {
		for _, c := range *raw.Data.Creators {
			md.Creators = append(md.Creators, Creator{
				Address:  types.FromCommon(c.Address),
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
	}
	return md
}

// 链上字符串按固定长度存储，尾部用 \x00 填充
func trimPadding(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
