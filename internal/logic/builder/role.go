package builder

import (
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Role 指令在原子交易中的角色。
// 组装器按角色校验顺序：Setup < Payment < Asset < Memo，
// 保证付款指令总在资产转移之前（或同一交易内原子执行）。
type Role int

const (
	RoleSetup   Role = iota + 1 // 账户准备，如创建 ATA
	RolePayment                 // 价值转移（SOL）
	RoleAsset                   // 资产转移（token / NFT）
	RoleMemo                    // 附言
)

var roleNames = map[Role]string{
	RoleSetup:   "setup",
	RolePayment: "payment",
	RoleAsset:   "asset",
	RoleMemo:    "memo",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Step 带角色的一条指令
type Step struct {
	Role        Role
	Instruction sdktypes.Instruction
}

func Setup(ix sdktypes.Instruction) Step   { return Step{Role: RoleSetup, Instruction: ix} }
func Payment(ix sdktypes.Instruction) Step { return Step{Role: RolePayment, Instruction: ix} }
func Asset(ix sdktypes.Instruction) Step   { return Step{Role: RoleAsset, Instruction: ix} }
func Note(ix sdktypes.Instruction) Step    { return Step{Role: RoleMemo, Instruction: ix} }
