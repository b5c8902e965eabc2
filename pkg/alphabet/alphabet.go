// Package alphabet provides the ordered digit sets used to spell identifiers.
//
// An Alphabet is an ordered list of pairwise-distinct runes. The position of
// a rune is its digit value, so the order matters: two alphabets holding the
// same runes in a different order spell every ordinal differently.
package alphabet

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// MinSize is the smallest alphabet that still forms a positional system.
const MinSize = 2

var (
	ErrTooFewSymbols   = errors.New("alphabet needs at least two symbols")
	ErrDuplicateSymbol = errors.New("duplicate symbol in alphabet")
	ErrInvalidSymbol   = errors.New("symbol cannot be used as a digit")
)

// Alphabet is an immutable ordered set of runes.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// New validates symbols and builds an Alphabet over a private copy of them.
// Every duplicate is reported, not only the first one.
func New(symbols []rune) (*Alphabet, error) {
	if len(symbols) < MinSize {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSymbols, len(symbols))
	}

	var result *multierror.Error
	index := make(map[rune]int, len(symbols))
	for i, r := range symbols {
		if !usable(r) {
			result = multierror.Append(result, fmt.Errorf("%w: %U at position %d", ErrInvalidSymbol, r, i))
			continue
		}
		if first, ok := index[r]; ok {
			result = multierror.Append(result, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateSymbol, r, first, i))
			continue
		}
		index[r] = i
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	own := make([]rune, len(symbols))
	copy(own, symbols)
	return &Alphabet{symbols: own, index: index}, nil
}

// Parse builds an Alphabet from the runes of s.
func Parse(s string) (*Alphabet, error) {
	return New([]rune(s))
}

// MustParse is like Parse but panics on error. Meant for package-level fixtures.
func MustParse(s string) *Alphabet {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Size returns the number of symbols, the base of the numeral system.
func (a *Alphabet) Size() int {
	return len(a.symbols)
}

// Symbol returns the rune with digit value i (0-based).
func (a *Alphabet) Symbol(i int) rune {
	return a.symbols[i]
}

// Index returns the 0-based digit value of r.
func (a *Alphabet) Index(r rune) (int, bool) {
	i, ok := a.index[r]
	return i, ok
}

// Symbols returns a copy of the ordered symbols.
func (a *Alphabet) Symbols() []rune {
	out := make([]rune, len(a.symbols))
	copy(out, a.symbols)
	return out
}

func (a *Alphabet) String() string {
	return string(a.symbols)
}

// usable rejects runes that only modify their neighbour when rendered.
func usable(r rune) bool {
	switch {
	case r == 0xFE0E || r == 0xFE0F: // variation selectors
		return false
	case r == 0x200D: // zero width joiner
		return false
	case r == utf8.RuneError:
		return false
	case r <= ' ' || r == 0x7F:
		return false
	}
	return true
}
