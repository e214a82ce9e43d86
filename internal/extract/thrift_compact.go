package extract

import "fmt"

// Minimal Thrift compact-protocol reader, sized only for walking Parquet's
// FileMetaData.schema list (see parquet.go). It implements just the wire
// shapes parquet-format's footer actually uses: structs, lists, i32/i64,
// booleans, and strings; anything else is skipped by type, not parsed.

const (
	tCompactStop   = 0x00
	tCompactTrue   = 0x01
	tCompactFalse  = 0x02
	tCompactByte   = 0x03
	tCompactI16    = 0x04
	tCompactI32    = 0x05
	tCompactI64    = 0x06
	tCompactDouble = 0x07
	tCompactBinary = 0x08
	tCompactList   = 0x09
	tCompactSet    = 0x0a
	tCompactMap    = 0x0b
	tCompactStruct = 0x0c
)

type thriftCompactReader struct {
	buf []byte
	pos int
}

func (r *thriftCompactReader) byte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("unexpected end of thrift buffer")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *thriftCompactReader) readUnsignedVarint() (uint64, error) {
	var x uint64
	var shift uint
	for {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		x |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, nil
		}
		shift += 7
	}
}

func (r *thriftCompactReader) readZigzagVarint() (int64, error) {
	u, err := r.readUnsignedVarint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// readFieldHeader reads one struct field header, updating lastFieldID per
// the compact protocol's delta encoding. ok is false only at end of buffer.
func (r *thriftCompactReader) readFieldHeader(lastFieldID *int16) (fieldType byte, fieldID int16, ok bool) {
	b, err := r.byte()
	if err != nil {
		return 0, 0, false
	}
	if b == tCompactStop {
		return tCompactStop, 0, true
	}
	delta := (b >> 4) & 0x0f
	fieldType = b & 0x0f
	if delta == 0 {
		id, err := r.readZigzagVarint()
		if err != nil {
			return 0, 0, false
		}
		fieldID = int16(id)
	} else {
		fieldID = *lastFieldID + int16(delta)
	}
	*lastFieldID = fieldID
	return fieldType, fieldID, true
}

func (r *thriftCompactReader) readString() (string, error) {
	n, err := r.readUnsignedVarint()
	if err != nil {
		return "", err
	}
	if r.pos+int(n) > len(r.buf) {
		return "", fmt.Errorf("string length exceeds buffer")
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// readListHeader returns the element type and count of a compact list.
func (r *thriftCompactReader) readListHeader() (elemType byte, size int, err error) {
	b, err := r.byte()
	if err != nil {
		return 0, 0, err
	}
	sizeNibble := (b >> 4) & 0x0f
	elemType = b & 0x0f
	if sizeNibble == 0x0f {
		n, err := r.readUnsignedVarint()
		if err != nil {
			return 0, 0, err
		}
		size = int(n)
	} else {
		size = int(sizeNibble)
	}
	return elemType, size, nil
}

// readSchemaList reads FileMetaData field 2: list<SchemaElement>. It
// returns only the leaf (non-group) elements in declaration order, which
// for records of primitives is already the flattened column order.
func (r *thriftCompactReader) readSchemaList() ([]parquetLeaf, error) {
	elemType, size, err := r.readListHeader()
	if err != nil {
		return nil, err
	}
	if elemType != tCompactStruct {
		return nil, fmt.Errorf("unexpected schema list element type %d", elemType)
	}

	var leaves []parquetLeaf
	for i := 0; i < size; i++ {
		leaf, isGroup, err := r.readSchemaElement()
		if err != nil {
			return nil, err
		}
		if !isGroup {
			leaves = append(leaves, leaf)
		}
	}
	return leaves, nil
}

// readSchemaElement reads one SchemaElement struct, returning whether it
// is a group node (num_children set, no physical type) so callers can
// exclude it from the flattened leaf list.
func (r *thriftCompactReader) readSchemaElement() (parquetLeaf, bool, error) {
	var leaf parquetLeaf
	isGroup := false
	lastFieldID := int16(0)
	for {
		fieldType, fieldID, ok := r.readFieldHeader(&lastFieldID)
		if !ok {
			return leaf, isGroup, fmt.Errorf("truncated schema element")
		}
		if fieldType == tCompactStop {
			break
		}
		switch fieldID {
		case 1: // type (i32 enum)
			v, err := r.readZigzagVarint()
			if err != nil {
				return leaf, isGroup, err
			}
			leaf.typeName = parquetPhysicalTypeName(int32(v))
		case 4: // name (string)
			s, err := r.readString()
			if err != nil {
				return leaf, isGroup, err
			}
			leaf.name = s
		case 5: // num_children (i32)
			v, err := r.readZigzagVarint()
			if err != nil {
				return leaf, isGroup, err
			}
			leaf.numChildren = int(v)
			isGroup = true
		case 6: // converted_type (i32 enum)
			v, err := r.readZigzagVarint()
			if err != nil {
				return leaf, isGroup, err
			}
			leaf.logicalType = parquetConvertedTypeName(int32(v))
		default:
			if err := r.skipField(fieldType); err != nil {
				return leaf, isGroup, err
			}
		}
	}
	return leaf, isGroup, nil
}

// skipField advances past one value of the given wire type without
// interpreting it, for struct/list fields this reader doesn't need.
func (r *thriftCompactReader) skipField(fieldType byte) error {
	switch fieldType {
	case tCompactTrue, tCompactFalse:
		return nil
	case tCompactByte:
		_, err := r.byte()
		return err
	case tCompactI16, tCompactI32, tCompactI64:
		_, err := r.readZigzagVarint()
		return err
	case tCompactDouble:
		if r.pos+8 > len(r.buf) {
			return fmt.Errorf("truncated double")
		}
		r.pos += 8
		return nil
	case tCompactBinary:
		_, err := r.readString()
		return err
	case tCompactList, tCompactSet:
		elemType, size, err := r.readListHeader()
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := r.skipField(elemType); err != nil {
				return err
			}
		}
		return nil
	case tCompactMap:
		n, err := r.readUnsignedVarint()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		typesByte, err := r.byte()
		if err != nil {
			return err
		}
		keyType := (typesByte >> 4) & 0x0f
		valType := typesByte & 0x0f
		for i := uint64(0); i < n; i++ {
			if err := r.skipField(keyType); err != nil {
				return err
			}
			if err := r.skipField(valType); err != nil {
				return err
			}
		}
		return nil
	case tCompactStruct:
		lastFieldID := int16(0)
		for {
			ft, _, ok := r.readFieldHeader(&lastFieldID)
			if !ok {
				return fmt.Errorf("truncated nested struct")
			}
			if ft == tCompactStop {
				return nil
			}
			if err := r.skipField(ft); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported thrift wire type %d", fieldType)
	}
}

// parquetPhysicalTypeName maps the parquet.thrift Type enum to a name used
// only for diagnostic purposes; logical-type mapping drives inferred_type.
func parquetPhysicalTypeName(t int32) string {
	switch t {
	case 0:
		return "boolean"
	case 1:
		return "int32"
	case 2:
		return "int64"
	case 4:
		return "float"
	case 5:
		return "double"
	case 6:
		return "byte_array"
	case 7:
		return "fixed_len_byte_array"
	default:
		return "unknown"
	}
}

// parquetConvertedTypeName maps the legacy ConvertedType enum's entries
// relevant to spec.md's logical-type mapping (date, timestamp, decimal).
func parquetConvertedTypeName(t int32) string {
	switch t {
	case 0:
		return "utf8"
	case 5:
		return "decimal"
	case 6:
		return "date"
	case 9, 10:
		return "timestamp"
	default:
		return ""
	}
}
