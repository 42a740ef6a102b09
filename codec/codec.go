package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/kjk/stockroom/stock"
)

// ErrMalformed is wrapped by decoders when a record can't be decoded
var ErrMalformed = errors.New("malformed record")

// Codec converts items to and from a persisted representation.
// All stores touched in a single run must use the same Codec.
type Codec interface {
	Name() string
	// Encode writes a single record for it
	Encode(w io.Writer, it stock.Item) error
	NewDecoder(r io.Reader) Decoder
}

// Decoder reads records one at a time
type Decoder interface {
	// Next returns the next item, io.EOF when there are no more records
	// and an error wrapping ErrMalformed if a record can't be decoded.
	// After an error Next keeps returning the same error.
	Next() (stock.Item, error)
}

var (
	Text   Codec = textCodec{}
	Binary Codec = binaryCodec{}

	// Default is the codec used when none is configured
	Default = Text
)

// ByName returns a codec by its name ("text" or "binary")
func ByName(name string) (Codec, error) {
	switch name {
	case "", Text.Name():
		return Text, nil
	case Binary.Name():
		return Binary, nil
	}
	return nil, fmt.Errorf("unknown codec '%s'", name)
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
