package builder

import (
	"fmt"

	"blink-builder-sol/internal/consts"
	"blink-builder-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// 所有 builder 均为纯函数：不做 I/O，相同输入得到相同指令

// Transfer SOL 转账（System Program）
func Transfer(from, to types.Pubkey, lamports uint64) sdktypes.Instruction {
	return system.Transfer(system.TransferParam{
		From:   from.ToCommon(),
		To:     to.ToCommon(),
		Amount: lamports,
	})
}

// TokenTransfer SPL token 转账，使用 TransferChecked 让链上同时校验 mint 与精度
func TokenTransfer(source, dest, owner, mint types.Pubkey, amount uint64, decimals uint8) sdktypes.Instruction {
	return token.TransferChecked(token.TransferCheckedParam{
		From:     source.ToCommon(),
		To:       dest.ToCommon(),
		Mint:     mint.ToCommon(),
		Auth:     owner.ToCommon(),
		Signers:  []common.PublicKey{},
		Amount:   amount,
		Decimals: decimals,
	})
}

// AssociatedAccount 由 owner + mint 确定性推导 ATA 地址
func AssociatedAccount(owner, mint types.Pubkey) (types.Pubkey, error) {
	ata, _, err := common.FindAssociatedTokenAddress(owner.ToCommon(), mint.ToCommon())
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("derive associated account owner=%s mint=%s: %w", owner, mint, err)
	}
	return types.FromCommon(ata), nil
}

// CreateAssociatedAccount 幂等创建 owner 的 ATA，payer 付租金，ATA 已存在时链上直接跳过。
// 同时返回推导出的 ATA 地址
func CreateAssociatedAccount(payer, owner, mint types.Pubkey) (sdktypes.Instruction, types.Pubkey, error) {
	ata, err := AssociatedAccount(owner, mint)
	if err != nil {
		return sdktypes.Instruction{}, types.Pubkey{}, err
	}
	ix := associated_token_account.CreateIdempotent(associated_token_account.CreateIdempotentParam{
		Funder:                 payer.ToCommon(),
		Owner:                  owner.ToCommon(),
		Mint:                   mint.ToCommon(),
		AssociatedTokenAccount: ata.ToCommon(),
	})
	return ix, ata, nil
}

// Memo SPL memo 指令，signer 必须在交易签名者之中
func Memo(signer types.Pubkey, text string) sdktypes.Instruction {
	return sdktypes.Instruction{
		ProgramID: consts.MemoProgram.ToCommon(),
		Accounts: []sdktypes.AccountMeta{
			{PubKey: signer.ToCommon(), IsSigner: true, IsWritable: false},
		},
		Data: []byte(text),
	}
}
