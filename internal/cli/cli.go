// Package cli implements the branchmoji command line.
package cli

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Siddarth2230/branchmoji/internal/config"
	"github.com/Siddarth2230/branchmoji/pkg/alphabet"
	"github.com/Siddarth2230/branchmoji/pkg/idgen"
)

type Globals struct {
	LogLevel string `help:"Set the logging level (debug|info|warn|error)" default:"info" env:"BRANCHMOJI_LOG_LEVEL"`
	Alphabet string `help:"Digits to spell identifiers with, in order (default: built-in emoji)" env:"BRANCHMOJI_ALPHABET"`
	Shuffle  bool   `help:"Randomize the digit order for this run" env:"BRANCHMOJI_SHUFFLE"`

	Stdout   io.Writer         `kong:"-"`
	Permuter alphabet.Permuter `kong:"-"`
}

type CLI struct {
	Globals

	Next   NextCmd     `cmd:"" help:"Print the smallest free branch name of a remote"`
	Decode DecodeCmd   `cmd:"" help:"Print the ordinal of each name, or why it has none"`
	Encode EncodeCmd   `cmd:"" help:"Print the name of each ordinal"`
	Digits AlphabetCmd `cmd:"" name:"alphabet" help:"Print the active alphabet"`
}

// Parser builds the kong parser for c.
func Parser(c *CLI, options ...kong.Option) (*kong.Kong, error) {
	opts := append([]kong.Option{
		kong.Name("branchmoji"),
		kong.Description("Hand out the smallest free emoji branch name"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, options...)
	return kong.New(c, opts...)
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// codec builds the alphabet for this run. A shuffled alphabet is drawn once
// per call, so build the codec once per command.
func (g *Globals) codec() (*idgen.Codec, error) {
	perm := g.Permuter
	if perm == nil {
		perm = alphabet.RandomPermuter()
	}
	a, err := config.BuildAlphabet(g.Alphabet, g.Shuffle, perm)
	if err != nil {
		return nil, err
	}
	return idgen.NewCodec(a), nil
}
