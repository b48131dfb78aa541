package assembler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"blink-builder-sol/internal/chain"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

var (
	ErrNoInstructions   = errors.New("no instructions to assemble")
	ErrInstructionOrder = errors.New("instruction roles out of order")
	ErrEmptyPayer       = errors.New("fee payer is empty")
)

const signatureSize = 64

// BlockSource 提供最新 blockhash，由 chain.Client 实现
type BlockSource interface {
	BlockReference(ctx context.Context) (chain.BlockReference, error)
}

// Envelope 未签名交易（base64）及其使用的 blockhash
type Envelope struct {
	Transaction string
	Ref         chain.BlockReference
}

type Assembler struct {
	blocks BlockSource
}

func New(blocks BlockSource) *Assembler {
	return &Assembler{blocks: blocks}
}

// Assemble 按调用方给定的顺序组装 v0 交易：
//  1. 校验角色顺序（Setup < Payment < Asset < Memo）
//  2. 实时获取 blockhash
//  3. 编译消息，签名位填零
//  4. base64 编码
//
// 不做任何签名。
func (a *Assembler) Assemble(ctx context.Context, payer types.Pubkey, steps []builder.Step) (*Envelope, error) {
	if err := CheckOrder(steps); err != nil {
		return nil, err
	}
	if payer.IsZero() {
		return nil, ErrEmptyPayer
	}

	ref, err := a.blocks.BlockReference(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := Compile(payer, steps, ref)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Transaction: base64.StdEncoding.EncodeToString(raw),
		Ref:         ref,
	}, nil
}

// CheckOrder 校验步骤非空、角色合法且按规范顺序非递减排列
func CheckOrder(steps []builder.Step) error {
	if len(steps) == 0 {
		return ErrNoInstructions
	}
	prev := builder.Role(0)
	for i, s := range steps {
		if !s.Role.Valid() {
			return fmt.Errorf("%w: step %d has unknown role %d", ErrInstructionOrder, i, s.Role)
		}
		if s.Role < prev {
			return fmt.Errorf("%w: step %d (%s) after %s", ErrInstructionOrder, i, s.Role, prev)
		}
		prev = s.Role
	}
	return nil
}

// Compile 纯函数：相同 payer、指令与 blockhash 产出完全相同的字节
func Compile(payer types.Pubkey, steps []builder.Step, ref chain.BlockReference) ([]byte, error) {
	ixs := make([]sdktypes.Instruction, 0, len(steps))
	for _, s := range steps {
		ixs = append(ixs, s.Instruction)
	}

	msg := sdktypes.NewMessage(sdktypes.NewMessageParam{
		FeePayer:        payer.ToCommon(),
		RecentBlockhash: ref.Blockhash,
		Instructions:    ixs,
	})
	msg.Version = sdktypes.MessageVersionV0

	tx := sdktypes.Transaction{
		Signatures: emptySignatures(int(msg.Header.NumRequireSignatures)),
		Message:    msg,
	}
	raw, err := tx.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	return raw, nil
}

// Decode base64 信封还原为交易
func Decode(envelope string) (sdktypes.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return sdktypes.Transaction{}, fmt.Errorf("decode base64 envelope: %w", err)
	}
	tx, err := sdktypes.TransactionDeserialize(raw)
	if err != nil {
		return sdktypes.Transaction{}, fmt.Errorf("deserialize transaction: %w", err)
	}
	return tx, nil
}

// Reencode 交易重新序列化为 base64
func Reencode(tx sdktypes.Transaction) (string, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Instruction 按静态账户表还原出的指令
type Instruction struct {
	ProgramID common.PublicKey
	Accounts  []common.PublicKey
	Data      []byte
}

// Instructions 还原交易指令。本服务产出的 v0 交易不带 lookup table，
// 所有索引都落在静态账户表内，越界视为非法交易
func Instructions(tx sdktypes.Transaction) ([]Instruction, error) {
	keys := tx.Message.Accounts
	lookup := func(i int) (common.PublicKey, error) {
		if i < 0 || i >= len(keys) {
			return common.PublicKey{}, fmt.Errorf("account index %d out of range (%d static keys)", i, len(keys))
		}
		return keys[i], nil
	}

	out := make([]Instruction, 0, len(tx.Message.Instructions))
	for _, ci := range tx.Message.Instructions {
		program, err := lookup(ci.ProgramIDIndex)
		if err != nil {
			return nil, err
		}
		accounts := make([]common.PublicKey, 0, len(ci.Accounts))
		for _, idx := range ci.Accounts {
			acc, err := lookup(idx)
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, acc)
		}
		out = append(out, Instruction{ProgramID: program, Accounts: accounts, Data: ci.Data})
	}
	return out, nil
}

func emptySignatures(n int) []sdktypes.Signature {
	sigs := make([]sdktypes.Signature, n)
	for i := range sigs {
		sigs[i] = make([]byte, signatureSize)
	}
	return sigs
}
