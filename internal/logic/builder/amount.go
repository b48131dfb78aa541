package builder

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"blink-builder-sol/internal/consts"
)

var ErrInvalidAmount = errors.New("invalid amount")

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// ToLamports 将十进制 SOL 数额精确换算为 lamports（超过 9 位小数部分截断）。
// 非正数、非数字、溢出均返回 ErrInvalidAmount。
func ToLamports(amount string) (uint64, error) {
	return ToBaseUnits(amount, consts.SolDecimals)
}

// ToBaseUnits 按 decimals 将十进制数额换算为最小单位
func ToBaseUnits(amount string, decimals uint8) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if r.Sign() <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %q", ErrInvalidAmount, amount)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	units := new(big.Int).Quo(r.Num(), r.Denom())

	if units.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %q is below the smallest unit", ErrInvalidAmount, amount)
	}
	if units.Cmp(maxUint64) > 0 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, amount)
	}
	return units.Uint64(), nil
}
