package batch

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
)

// Field numbers of the batch message:
//
//	message Batch {
//	  string source_id    = 1;
//	  uint64 batch_number = 2;
//	  bool   is_eof       = 3;
//	  repeated Record records = 4;
//	}
//	message Record {
//	  string key   = 1;
//	  string value = 2;
//	}
const (
	fieldSourceID    protowire.Number = 1
	fieldBatchNumber protowire.Number = 2
	fieldIsEOF       protowire.Number = 3
	fieldRecords     protowire.Number = 4

	fieldRecordKey   protowire.Number = 1
	fieldRecordValue protowire.Number = 2
)

// ErrInvalidBatch wraps every decoding failure.
var ErrInvalidBatch = errors.New("invalid batch message")

// SerializeBatch encodes a Batch using the protobuf wire format.
func SerializeBatch(b *Batch) []byte {
	buf := make([]byte, 0, estimateSize(b))

	if b.SourceID != "" {
		buf = protowire.AppendTag(buf, fieldSourceID, protowire.BytesType)
		buf = protowire.AppendString(buf, b.SourceID)
	}
	if b.BatchNumber != 0 {
		buf = protowire.AppendTag(buf, fieldBatchNumber, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(b.BatchNumber))
	}
	if b.IsEOF {
		buf = protowire.AppendTag(buf, fieldIsEOF, protowire.VarintType)
		buf = protowire.AppendVarint(buf, protowire.EncodeBool(true))
	}

	var rec []byte
	for _, r := range b.Records {
		rec = rec[:0]
		rec = protowire.AppendTag(rec, fieldRecordKey, protowire.BytesType)
		rec = protowire.AppendString(rec, r.Key)
		rec = protowire.AppendTag(rec, fieldRecordValue, protowire.BytesType)
		rec = protowire.AppendString(rec, r.Value)

		buf = protowire.AppendTag(buf, fieldRecords, protowire.BytesType)
		buf = protowire.AppendBytes(buf, rec)
	}

	return buf
}

// DeserializeBatch decodes a message produced by SerializeBatch. Unknown
// fields are skipped.
func DeserializeBatch(data []byte) (*Batch, error) {
	b := &Batch{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: tag: %v", ErrInvalidBatch, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldSourceID && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: source_id: %v", ErrInvalidBatch, protowire.ParseError(m))
			}
			b.SourceID = v
			n = m
		case num == fieldBatchNumber && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: batch_number: %v", ErrInvalidBatch, protowire.ParseError(m))
			}
			b.BatchNumber = int(v)
			n = m
		case num == fieldIsEOF && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: is_eof: %v", ErrInvalidBatch, protowire.ParseError(m))
			}
			b.IsEOF = protowire.DecodeBool(v)
			n = m
		case num == fieldRecords && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: record: %v", ErrInvalidBatch, protowire.ParseError(m))
			}
			r, err := decodeRecord(v)
			if err != nil {
				return nil, err
			}
			b.Records = append(b.Records, r)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrInvalidBatch, num, protowire.ParseError(n))
			}
		}
		data = data[n:]
	}

	return b, nil
}

func decodeRecord(data []byte) (record.Record, error) {
	var r record.Record

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return r, fmt.Errorf("%w: record tag: %v", ErrInvalidBatch, protowire.ParseError(n))
		}
		data = data[n:]

		if typ == protowire.BytesType && (num == fieldRecordKey || num == fieldRecordValue) {
			v, m := protowire.ConsumeString(data)
			if m < 0 {
				return r, fmt.Errorf("%w: record field %d: %v", ErrInvalidBatch, num, protowire.ParseError(m))
			}
			if num == fieldRecordKey {
				r.Key = v
			} else {
				r.Value = v
			}
			data = data[m:]
			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return r, fmt.Errorf("%w: record field %d: %v", ErrInvalidBatch, num, protowire.ParseError(m))
		}
		data = data[m:]
	}

	return r, nil
}

func estimateSize(b *Batch) int {
	size := len(b.SourceID) + 16
	for _, r := range b.Records {
		size += len(r.Key) + len(r.Value) + 8
	}
	return size
}
