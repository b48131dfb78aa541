package utils

import (
	"encoding/binary"

	"blink-builder-sol/internal/types"
)

// PayerPartition 同一付款人的事件固定落在同一分区，保证消费顺序。
// 取公钥中 4 个分散字节拼成 uint32 后取模，非加密哈希。
func PayerPartition(payer types.Pubkey, partitions int) int32 {
	if partitions <= 1 {
		return 0
	}
	h := binary.BigEndian.Uint32([]byte{payer[7], payer[15], payer[19], payer[27]})
	return int32(h % uint32(partitions))
}
