package tools

import (
	"blink-builder-sol/internal/consts"
	"blink-builder-sol/internal/types"
)

// SwapToken swap blink 可展示的代币信息
type SwapToken struct {
	Mint     types.Pubkey
	Name     string
	Icon     string // 相对路径，由 handler 拼成绝对地址
	Decimals uint8
}

// SwapTokens 当前支持的 swap 代币（输入、输出均需在此表中）
var SwapTokens = map[types.Pubkey]SwapToken{
	consts.WSOLMint: {Mint: consts.WSOLMint, Name: "SOL", Icon: "/solana-pic.png", Decimals: 9},
	consts.JUPMint:  {Mint: consts.JUPMint, Name: "JUP", Icon: "/JUP.jpg", Decimals: 6},
	consts.WIFMint:  {Mint: consts.WIFMint, Name: "WIF", Icon: "/WIF.jpeg", Decimals: 6},
	consts.BONKMint: {Mint: consts.BONKMint, Name: "BONK", Icon: "/BONK.jpg", Decimals: 5},
}

// LookupSwapToken 按 base58 mint 查找，非法地址或不支持的代币返回 false
func LookupSwapToken(mint string) (SwapToken, bool) {
	pk, err := types.TryPubkeyFromBase58(mint)
	if err != nil {
		return SwapToken{}, false
	}
	t, ok := SwapTokens[pk]
	return t, ok
}
