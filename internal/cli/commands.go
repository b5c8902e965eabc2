package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Siddarth2230/branchmoji/internal/gitref"
	"github.com/Siddarth2230/branchmoji/pkg/idgen"
)

type NextCmd struct {
	Repo   string `short:"r" help:"Path inside the repository" default:"."`
	Remote string `help:"Remote whose branches are taken" default:"origin"`
	Local  bool   `short:"l" help:"Treat local branches as taken too"`
}

func (cmd *NextCmd) Run(globals *Globals) error {
	ctx := context.Background()
	log := zap.L().Named("next")

	codec, err := globals.codec()
	if err != nil {
		return err
	}

	repo, err := gitref.Discover(ctx, cmd.Repo)
	if err != nil {
		return err
	}

	cur, err := repo.CurrentBranch(ctx)
	switch {
	case errors.Is(err, gitref.ErrDetachedHead):
		log.Info("not on any branch")
	case err != nil:
		log.Warn("failed to get current branch name", zap.Error(err))
	default:
		log.Info("current branch", zap.String("branch", cur))
	}
	if clean, err := repo.IsClean(ctx); err == nil && !clean {
		log.Warn("the repository is not clean")
	}

	gen := idgen.NewSequentialGenerator(codec, repo.Source(cmd.Remote, cmd.Local))
	name, n, err := gen.GenerateOrdinal(ctx)
	if err != nil {
		return err
	}
	log.Debug("allocated", zap.String("remote", cmd.Remote), zap.Uint64("ordinal", uint64(n)))

	fmt.Fprintf(globals.stdout(), "new-branch-name: %s\n", name)
	return nil
}

type DecodeCmd struct {
	Names []string `arg:"" help:"Names to classify"`
}

func (cmd *DecodeCmd) Run(globals *Globals) error {
	codec, err := globals.codec()
	if err != nil {
		return err
	}
	for _, name := range cmd.Names {
		n, err := codec.Parse(name)
		if err != nil {
			fmt.Fprintf(globals.stdout(), "%s\tinvalid: %v\n", name, err)
			continue
		}
		fmt.Fprintf(globals.stdout(), "%s\t%d\n", name, n)
	}
	return nil
}

type EncodeCmd struct {
	Ordinals []uint64 `arg:"" help:"Ordinals to spell, starting at 1"`
}

func (cmd *EncodeCmd) Run(globals *Globals) error {
	codec, err := globals.codec()
	if err != nil {
		return err
	}
	for _, n := range cmd.Ordinals {
		if n == 0 {
			return errors.New("ordinals start at 1")
		}
		fmt.Fprintf(globals.stdout(), "%d\t%s\n", n, codec.Encode(idgen.Ordinal(n)))
	}
	return nil
}

type AlphabetCmd struct{}

func (cmd *AlphabetCmd) Run(globals *Globals) error {
	codec, err := globals.codec()
	if err != nil {
		return err
	}
	fmt.Fprintf(globals.stdout(), "%s\n%d symbols\n", codec.Alphabet(), codec.Base())
	return nil
}
