package consts

const (
	// LamportsPerSol 1 SOL = 10^9 lamports
	LamportsPerSol uint64 = 1_000_000_000
	SolDecimals    uint8  = 9

	// NftAmount NFT 的 token 数量恒为 1，精度为 0
	NftAmount   uint64 = 1
	NftDecimals uint8  = 0
)

// Actions 协议相关常量
const (
	ActionVersion = "2.4"

	// CAIP-2 格式的链标识
	BlockchainIDDevnet  = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
	BlockchainIDMainnet = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"

	// DialBlinkBase blink 的对外分享入口
	DialBlinkBase   = "https://dial.to/"
	ActionURLScheme = "solana-action:"
)

// BlockchainID 根据网络名返回 x-blockchain-ids 头部值，未知网络按 devnet 处理
func BlockchainID(network string) string {
	if network == "mainnet" || network == "mainnet-beta" {
		return BlockchainIDMainnet
	}
	return BlockchainIDDevnet
}
