package utils

import "github.com/cespare/xxhash/v2"

// PartitionHashBytes 按 key 的 xxhash 选择分区，同一 key 始终落在同一分区。
// mod <= 1 或 key 为空时返回 0
func PartitionHashBytes(key []byte, mod uint32) uint32 {
	if len(key) == 0 || mod <= 1 {
		return 0
	}
	return uint32(xxhash.Sum64(key) % uint64(mod))
}
