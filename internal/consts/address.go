package consts

import "blink-builder-sol/internal/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	//  Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	TokenMetaProgramIdStr     = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	MemoProgramStr            = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"

	// swap 支持的代币
	WSOLMintStr = "So11111111111111111111111111111111111111112"
	JUPMintStr  = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
	WIFMintStr  = "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm"
	BONKMintStr = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

var (
	// Programs
	SystemProgram          = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram           = types.PubkeyFromBase58(TokenProgramStr)
	TokenProgram2022       = types.PubkeyFromBase58(TokenProgram2022Str)
	AssociatedTokenProgram = types.PubkeyFromBase58(AssociatedTokenProgramStr)
	TokenMetaProgram       = types.PubkeyFromBase58(TokenMetaProgramIdStr)
	MemoProgram            = types.PubkeyFromBase58(MemoProgramStr)

	WSOLMint = types.PubkeyFromBase58(WSOLMintStr)
	JUPMint  = types.PubkeyFromBase58(JUPMintStr)
	WIFMint  = types.PubkeyFromBase58(WIFMintStr)
	BONKMint = types.PubkeyFromBase58(BONKMintStr)
)
