package alphabet

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"ABC", nil},
		{"01", nil},
		{Emoji, nil},
		{"A", ErrTooFewSymbols},
		{"", ErrTooFewSymbols},
		{"AAB", ErrDuplicateSymbol},
		{"⭐️🌍", ErrInvalidSymbol},
		{"A B", ErrInvalidSymbol},
	}

	for _, tt := range tests {
		a, err := Parse(tt.input)
		if tt.wantErr != nil {
			assert.Truef(t, errors.Is(err, tt.wantErr), "Parse(%q) error = %v; want %v", tt.input, err, tt.wantErr)
			assert.Nil(t, a)
			continue
		}
		require.NoErrorf(t, err, "Parse(%q)", tt.input)
		assert.Equal(t, utf8.RuneCountInString(tt.input), a.Size())
		assert.Equal(t, tt.input, a.String())
	}
}

func TestParseReportsEveryDuplicate(t *testing.T) {
	_, err := Parse("ABACB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'A' at positions 0 and 2")
	assert.Contains(t, err.Error(), "'B' at positions 1 and 4")
}

func TestIndex(t *testing.T) {
	a := MustParse("ABC")

	for i, r := range "ABC" {
		got, ok := a.Index(r)
		assert.True(t, ok)
		assert.Equal(t, i, got)
		assert.Equal(t, r, a.Symbol(i))
	}

	_, ok := a.Index('1')
	assert.False(t, ok)
}

func TestSymbolsIsACopy(t *testing.T) {
	a := MustParse("ABC")
	s := a.Symbols()
	s[0] = 'Z'
	assert.Equal(t, "ABC", a.String())
}

func TestDefault(t *testing.T) {
	a := Default()
	assert.Equal(t, 228, a.Size())
	assert.Equal(t, '✊', a.Symbol(0))
	assert.Equal(t, '🪳', a.Symbol(a.Size()-1))
}

func TestShuffle(t *testing.T) {
	a := MustParse("ABCD")

	reverse := func(n int) []int {
		p := make([]int, n)
		for i := range p {
			p[i] = n - 1 - i
		}
		return p
	}

	got, err := Shuffle(a, reverse)
	require.NoError(t, err)
	assert.Equal(t, "DCBA", got.String())
	assert.Equal(t, "ABCD", a.String())

	same, err := Shuffle(a, Identity)
	require.NoError(t, err)
	assert.Equal(t, "ABCD", same.String())
}

func TestShuffleRejectsBrokenPermutation(t *testing.T) {
	a := MustParse("ABCD")

	_, err := Shuffle(a, func(n int) []int { return []int{0, 0, 1, 2} })
	assert.True(t, errors.Is(err, ErrDuplicateSymbol))

	_, err = Shuffle(a, func(n int) []int { return []int{0, 1} })
	assert.Error(t, err)

	_, err = Shuffle(a, func(n int) []int { return []int{0, 1, 2, 9} })
	assert.Error(t, err)
}

func TestRandomPermuterKeepsSymbols(t *testing.T) {
	a := Default()
	perm := RandomPermuter()

	for i := 0; i < 5; i++ {
		got, err := Shuffle(a, perm)
		require.NoError(t, err)
		assert.ElementsMatch(t, a.Symbols(), got.Symbols())
	}
}
