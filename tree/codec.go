// The Node Codec: a deterministic binary encoding of a tree node to a
// single opaque byte sequence. Layout is fixed by the external interface
// contract (magic, format version, row count, then sorted
// length-prefixed rows); the CRC32 trailer is an addition grounded on
// the teacher pack's checksum utility, giving the codec the same
// defense-in-depth the teacher gives every on-disk structure it writes.
package tree

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/trinitylake/trinitylake-go/errors"
)

var magic = [4]byte{'T', 'R', 'L', 'K'}

const formatVersion uint16 = 1

var crc32Table = crc32.MakeTable(crc32.IEEE)

// Encode serializes node to its canonical byte form: magic, format
// version, row count, then every row sorted ascending by key bytes, each
// as keyLen|key|valueLen|value, followed by a trailing CRC32 over
// everything preceding it.
func Encode(node *Node) []byte {
	rows := node.Rows()

	var body bytes.Buffer
	body.Write(magic[:])
	writeUint16(&body, formatVersion)
	writeUint32(&body, uint32(len(rows)))

	for _, row := range rows {
		writeUint32(&body, uint32(len(row.Key)))
		body.WriteString(row.Key)
		writeUint32(&body, uint32(len(row.Value)))
		body.WriteString(row.Value)
	}

	checksum := crc32.Checksum(body.Bytes(), crc32Table)
	out := make([]byte, body.Len()+4)
	copy(out, body.Bytes())
	binary.BigEndian.PutUint32(out[body.Len():], checksum)
	return out
}

// Decode parses data produced by Encode, reconstructing a node at the
// given version. It rejects an unrecognized magic or format version, a
// checksum mismatch, a declared row count that doesn't match the observed
// count, and duplicate keys — all as *errors.Error with Kind
// errors.KindCorruptNode.
func Decode(data []byte, version int64) (*Node, error) {
	if len(data) < 4 {
		return nil, errors.CorruptNode("node data shorter than checksum trailer")
	}

	body, trailer := data[:len(data)-4], data[len(data)-4:]
	expected := binary.BigEndian.Uint32(trailer)
	actual := crc32.Checksum(body, crc32Table)
	if actual != expected {
		return nil, errors.CorruptNode("checksum mismatch").
			WithDetail("expected", expected).
			WithDetail("actual", actual)
	}

	r := bytes.NewReader(body)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil || gotMagic != magic {
		return nil, errors.CorruptNode("unrecognized magic bytes")
	}

	var version16 uint16
	if err := binary.Read(r, binary.BigEndian, &version16); err != nil {
		return nil, errors.CorruptNode("truncated format version")
	}
	if version16 != formatVersion {
		return nil, errors.CorruptNode("unrecognized format version")
	}

	var rowCount uint32
	if err := binary.Read(r, binary.BigEndian, &rowCount); err != nil {
		return nil, errors.CorruptNode("truncated row count")
	}

	seen := make(map[string]struct{}, rowCount)
	rows := make([]Row, 0, rowCount)
	var observed uint32
	var lastKey string
	for i := uint32(0); i < rowCount; i++ {
		key, err := readString(r)
		if err != nil {
			return nil, errors.CorruptNode("truncated row key")
		}
		value, err := readString(r)
		if err != nil {
			return nil, errors.CorruptNode("truncated row value")
		}
		if _, exists := seen[key]; exists {
			return nil, errors.CorruptNode("duplicate key in node").WithDetail("key", key)
		}
		if observed > 0 && key < lastKey {
			return nil, errors.CorruptNode("rows not sorted ascending by key")
		}
		seen[key] = struct{}{}
		rows = append(rows, Row{Key: key, Value: value})
		lastKey = key
		observed++
	}

	if r.Len() > 0 {
		return nil, errors.CorruptNode("declared row count does not match observed count").
			WithDetail("declared", rowCount).
			WithDetail("trailing_bytes", r.Len())
	}

	if observed != rowCount {
		return nil, errors.CorruptNode("declared row count does not match observed count").
			WithDetail("declared", rowCount).
			WithDetail("observed", observed)
	}

	return NewNodeFromRows(version, rows), nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readString(r *bytes.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
