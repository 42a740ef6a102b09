package stock

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxNameLen is the longest name, in bytes, an item can have
	MaxNameLen = 49
	// MaxCategoryLen is the longest category tag, in bytes
	MaxCategoryLen = 19
	// MaxSectorLen is the longest sector tag, in bytes
	MaxSectorLen = 9
)

// ErrInvalidItem is wrapped by all errors returned from Item.Validate
var ErrInvalidItem = errors.New("invalid item")

// Item is a single perishable item on the shelves.
// Items are values: once placed in an index they're never changed.
type Item struct {
	Name     string
	Category Category
	// days until the item expires, 0 means already expired
	Expiry int32
	Sector string
}

// Expired returns true if the item should be removed from stores
func (it Item) Expired() bool {
	return it.Expiry <= 0
}

func (it Item) String() string {
	return fmt.Sprintf("%s (%s, %d days, %s)", it.Name, it.Category, it.Expiry, it.Sector)
}

func checkField(field string, v string, maxLen int) error {
	if len(v) > maxLen {
		return fmt.Errorf("%w: %s '%s' is %d bytes, max is %d", ErrInvalidItem, field, v, len(v), maxLen)
	}
	// '|' separates fields in text records, NUL pads fields in binary records
	if strings.ContainsAny(v, "\n\r\x00|") {
		return fmt.Errorf("%w: %s '%s' contains a forbidden character", ErrInvalidItem, field, v)
	}
	return nil
}

// Validate returns an error if the item can't be stored
func (it Item) Validate() error {
	if it.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidItem)
	}
	if err := checkField("name", it.Name, MaxNameLen); err != nil {
		return err
	}
	if err := checkField("category", string(it.Category), MaxCategoryLen); err != nil {
		return err
	}
	if err := checkField("sector", it.Sector, MaxSectorLen); err != nil {
		return err
	}
	if it.Expiry < 0 {
		return fmt.Errorf("%w: negative expiry %d", ErrInvalidItem, it.Expiry)
	}
	return nil
}
