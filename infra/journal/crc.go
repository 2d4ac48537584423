package journal

import "hash/crc32"

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32 returns the checksum appended to each journal frame.
func CRC32(b []byte) uint32 {
	return crc32.Checksum(b, crcTable)
}

// CRC32Valid verifies a frame against its stored checksum.
func CRC32Valid(b []byte, sum uint32) bool {
	return CRC32(b) == sum
}
