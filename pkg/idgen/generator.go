package idgen

import (
	"context"
	"fmt"
)

// Generator defines the interface for generating identifiers.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// Source lists the names already issued in a namespace. Names that do not
// belong to the alphabet are allowed and will be skipped.
type Source interface {
	Names(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]string, error)

func (f SourceFunc) Names(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Sources concatenates the names of every source, in order.
func Sources(srcs ...Source) Source {
	return SourceFunc(func(ctx context.Context) ([]string, error) {
		var all []string
		for _, src := range srcs {
			names, err := src.Names(ctx)
			if err != nil {
				return nil, err
			}
			all = append(all, names...)
		}
		return all, nil
	})
}

// SequentialGenerator hands out the smallest free identifier of a Source.
// It reads the whole source once per call and keeps no state in between, so
// two callers racing on the same source can receive the same identifier.
type SequentialGenerator struct {
	codec  *Codec
	source Source
}

func NewSequentialGenerator(codec *Codec, source Source) *SequentialGenerator {
	return &SequentialGenerator{codec: codec, source: source}
}

// Generate returns the next identifier.
func (g *SequentialGenerator) Generate(ctx context.Context) (string, error) {
	id, _, err := g.GenerateOrdinal(ctx)
	return id, err
}

// GenerateOrdinal is Generate that also reports the chosen ordinal.
func (g *SequentialGenerator) GenerateOrdinal(ctx context.Context) (string, Ordinal, error) {
	names, err := g.source.Names(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("list existing identifiers: %w", err)
	}
	id, n := Next(g.codec, names)
	return id, n, nil
}
