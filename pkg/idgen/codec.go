package idgen

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/Siddarth2230/branchmoji/pkg/alphabet"
)

// Ordinal is the numeric value of an identifier. Valid ordinals start at 1;
// the zero value means "no ordinal".
type Ordinal uint64

var (
	ErrEmptyIdentifier = errors.New("empty identifier")
	ErrInvalidSymbol   = errors.New("symbol not in alphabet")
	ErrOverflow        = errors.New("identifier exceeds the ordinal range")
)

// Codec converts between ordinals and identifiers in bijective base-B, where
// B is the alphabet size. Digit values run 1..B, so there is no zero digit
// and every non-empty string over the alphabet is the spelling of exactly
// one ordinal.
type Codec struct {
	symbols []rune
	index   map[rune]int
	base    uint64
}

// NewCodec returns a Codec over a.
func NewCodec(a *alphabet.Alphabet) *Codec {
	return newCodec(a.Symbols())
}

// newCodec skips alphabet validation. A repeated symbol resolves to its
// last position, which breaks the round trip.
func newCodec(symbols []rune) *Codec {
	index := make(map[rune]int, len(symbols))
	for i, r := range symbols {
		index[r] = i
	}
	return &Codec{
		symbols: symbols,
		index:   index,
		base:    uint64(len(symbols)),
	}
}

// Base returns the alphabet size.
func (c *Codec) Base() int {
	return int(c.base)
}

// Alphabet returns the digits in order.
func (c *Codec) Alphabet() string {
	return string(c.symbols)
}

// Encode returns the identifier spelling n. Encode(0) is "".
func (c *Codec) Encode(n Ordinal) string {
	if n == 0 {
		return ""
	}
	v := uint64(n)
	digits := make([]rune, 0, 8)
	for v > 0 {
		v--
		digits = append(digits, c.symbols[v%c.base])
		v /= c.base
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// Decode returns the ordinal spelled by id. ok is false when id is empty,
// holds a rune outside the alphabet, or is too long to fit an Ordinal.
// Callers scanning a mixed namespace are expected to just skip those.
func (c *Codec) Decode(id string) (n Ordinal, ok bool) {
	n, st, _ := c.fold(id)
	return n, st == decoded
}

// Validate is Decode with a reason attached.
func (c *Codec) Validate(id string) error {
	_, err := c.Parse(id)
	return err
}

// Parse returns the ordinal spelled by id, or the reason it has none.
func (c *Codec) Parse(id string) (Ordinal, error) {
	n, st, at := c.fold(id)
	switch st {
	case empty:
		return 0, ErrEmptyIdentifier
	case unknownRune:
		r, _ := utf8.DecodeRuneInString(id[at:])
		return 0, fmt.Errorf("%w: %q at byte %d", ErrInvalidSymbol, r, at)
	case overflow:
		return 0, fmt.Errorf("%w: %q", ErrOverflow, id)
	}
	return n, nil
}

type foldStatus int

const (
	decoded foldStatus = iota
	empty
	unknownRune
	overflow
)

// fold stops at the first rune it cannot use and reports its byte offset.
func (c *Codec) fold(id string) (Ordinal, foldStatus, int) {
	if id == "" {
		return 0, empty, 0
	}
	var v uint64
	for at, r := range id {
		i, ok := c.index[r]
		if !ok {
			return 0, unknownRune, at
		}
		digit := uint64(i) + 1
		if v > (math.MaxUint64-digit)/c.base {
			return 0, overflow, at
		}
		v = v*c.base + digit
	}
	return Ordinal(v), decoded, 0
}
