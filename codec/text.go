package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kjk/stockroom/stock"
)

// format of a text record:
// Nome: <name> | Tipo: <category> | Vencimento: <expiry> | Setor: <sector>\n

const (
	fieldSep = " | "

	// longer than the longest valid line, which is about 130 bytes
	maxLineLen = 256
)

var textLabels = []string{"Nome: ", "Tipo: ", "Vencimento: ", "Setor: "}

type textCodec struct{}

func (textCodec) Name() string {
	return "text"
}

// FormatLine returns the text representation of it, without newline
func FormatLine(it stock.Item) string {
	return fmt.Sprintf("Nome: %s | Tipo: %s | Vencimento: %d | Setor: %s", it.Name, it.Category, it.Expiry, it.Sector)
}

func (textCodec) Encode(w io.Writer, it stock.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	_, err := io.WriteString(w, FormatLine(it)+"\n")
	return err
}

// ParseLine parses a single text record, without the trailing newline
func ParseLine(line string) (stock.Item, error) {
	var it stock.Item
	parts := strings.Split(line, fieldSep)
	if len(parts) != len(textLabels) {
		return it, malformedf("expected %d fields, got %d in '%s'", len(textLabels), len(parts), line)
	}
	vals := make([]string, len(parts))
	for i, part := range parts {
		v, ok := strings.CutPrefix(part, textLabels[i])
		if !ok {
			// an empty sector is written as "Setor: " and may lose its trailing space
			if i == len(parts)-1 && part == strings.TrimSpace(textLabels[i]) {
				v, ok = "", true
			}
		}
		if !ok {
			return it, malformedf("field %d should start with '%s' in '%s'", i, textLabels[i], line)
		}
		vals[i] = v
	}
	expiry, err := strconv.ParseInt(vals[2], 10, 32)
	if err != nil {
		return it, malformedf("invalid expiry '%s' in '%s'", vals[2], line)
	}
	it = stock.Item{
		Name:     vals[0],
		Category: stock.Category(vals[1]),
		Expiry:   int32(expiry),
		Sector:   vals[3],
	}
	if err = it.Validate(); err != nil {
		return stock.Item{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return it, nil
}

type textDecoder struct {
	scanner *bufio.Scanner
	err     error
}

func (textCodec) NewDecoder(r io.Reader) Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxLineLen), maxLineLen)
	return &textDecoder{scanner: scanner}
}

func (d *textDecoder) Next() (stock.Item, error) {
	if d.err != nil {
		return stock.Item{}, d.err
	}
	for d.scanner.Scan() {
		line := strings.TrimSuffix(d.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		it, err := ParseLine(line)
		if err != nil {
			d.err = err
			return stock.Item{}, err
		}
		return it, nil
	}
	err := d.scanner.Err()
	switch {
	case err == nil:
		d.err = io.EOF
	case errors.Is(err, bufio.ErrTooLong):
		d.err = malformedf("line longer than %d bytes", maxLineLen)
	default:
		d.err = err
	}
	return stock.Item{}, d.err
}
