package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kjk/stockroom/stock"
)

// layout of a binary record, little-endian, no padding:
// name[50] category[20] expiry int32 sector[10]
// strings are NUL-terminated and NUL-padded to the size of the field
const (
	nameFieldSize     = stock.MaxNameLen + 1
	categoryFieldSize = stock.MaxCategoryLen + 1
	sectorFieldSize   = stock.MaxSectorLen + 1

	// RecordSize is the size of a single binary record
	RecordSize = nameFieldSize + categoryFieldSize + 4 + sectorFieldSize
)

type binaryCodec struct{}

func (binaryCodec) Name() string {
	return "binary"
}

// MarshalBinaryRecord returns the fixed-size binary record for it
func MarshalBinaryRecord(it stock.Item) ([]byte, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	d := make([]byte, RecordSize)
	off := 0
	copy(d[off:off+nameFieldSize], it.Name)
	off += nameFieldSize
	copy(d[off:off+categoryFieldSize], string(it.Category))
	off += categoryFieldSize
	binary.LittleEndian.PutUint32(d[off:], uint32(it.Expiry))
	off += 4
	copy(d[off:off+sectorFieldSize], it.Sector)
	return d, nil
}

func readCString(d []byte, field string) (string, error) {
	idx := bytes.IndexByte(d, 0)
	if idx == -1 {
		return "", malformedf("%s field is not terminated", field)
	}
	return string(d[:idx]), nil
}

// UnmarshalBinaryRecord decodes a record created by MarshalBinaryRecord
func UnmarshalBinaryRecord(d []byte) (stock.Item, error) {
	var it stock.Item
	if len(d) != RecordSize {
		return it, malformedf("record is %d bytes, expected %d", len(d), RecordSize)
	}
	off := 0
	name, err := readCString(d[off:off+nameFieldSize], "name")
	if err != nil {
		return it, err
	}
	off += nameFieldSize
	category, err := readCString(d[off:off+categoryFieldSize], "category")
	if err != nil {
		return it, err
	}
	off += categoryFieldSize
	expiry := int32(binary.LittleEndian.Uint32(d[off:]))
	off += 4
	sector, err := readCString(d[off:off+sectorFieldSize], "sector")
	if err != nil {
		return it, err
	}
	it = stock.Item{
		Name:     name,
		Category: stock.Category(category),
		Expiry:   expiry,
		Sector:   sector,
	}
	if err = it.Validate(); err != nil {
		return stock.Item{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return it, nil
}

func (binaryCodec) Encode(w io.Writer, it stock.Item) error {
	d, err := MarshalBinaryRecord(it)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

type binaryDecoder struct {
	r   io.Reader
	buf [RecordSize]byte
	err error
}

func (binaryCodec) NewDecoder(r io.Reader) Decoder {
	return &binaryDecoder{r: r}
}

func (d *binaryDecoder) Next() (stock.Item, error) {
	if d.err != nil {
		return stock.Item{}, d.err
	}
	n, err := io.ReadFull(d.r, d.buf[:])
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			err = malformedf("truncated record of %d bytes, expected %d", n, RecordSize)
		}
		d.err = err
		return stock.Item{}, err
	}
	it, err := UnmarshalBinaryRecord(d.buf[:])
	if err != nil {
		d.err = err
	}
	return it, err
}
