package tools

import (
	"blink-builder-sol/internal/consts"
	"blink-builder-sol/internal/types"
)

var tokenPrograms = map[types.Pubkey]struct{}{
	consts.TokenProgram:     {},
	consts.TokenProgram2022: {},
}

// OwnedByTokenProgram 账户 owner 是 SPL Token（v1 或 2022）程序时，账户数据才能按 token account 解析
func OwnedByTokenProgram(owner types.Pubkey) bool {
	_, ok := tokenPrograms[owner]
	return ok
}
