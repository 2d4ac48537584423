package journal

import "time"

// RecordType tags which market command a journal record carries.
type RecordType uint8

const (
	RecordAddSymbol RecordType = iota
	RecordDeleteSymbol
	RecordAddOrderBook
	RecordDeleteOrderBook
	RecordAddOrder
	RecordReduceOrder
	RecordModifyOrder
	RecordReplaceOrder
	RecordDeleteOrder
	RecordEnableMatching
	RecordDisableMatching
)

// Record is one journaled command. The payload encoding is owned by
// the caller; the journal only frames and checksums it.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
