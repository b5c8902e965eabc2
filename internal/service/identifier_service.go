package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/Siddarth2230/branchmoji/internal/models"
	"github.com/Siddarth2230/branchmoji/internal/repository"
	"github.com/Siddarth2230/branchmoji/pkg/cache"
	"github.com/Siddarth2230/branchmoji/pkg/idgen"
	"github.com/Siddarth2230/branchmoji/pkg/metrics"
)

var (
	ErrInvalidNamespace  = errors.New("invalid namespace")
	ErrInvalidIdentifier = errors.New("identifier does not belong to the alphabet")
	ErrNotFound          = errors.New("identifier not found")
	ErrAllocExhausted    = errors.New("failed to allocate a free identifier after retries")
)

// max attempts for the allocate/save loop
const maxAttempts = 6

// Store persists issued identifiers per namespace.
type Store interface {
	ListNames(ctx context.Context, namespace string) ([]string, error)
	ListByNamespace(ctx context.Context, namespace string) ([]*models.Identifier, error)
	FindByName(ctx context.Context, namespace, name string) (*models.Identifier, error)
	Save(ctx context.Context, id *models.Identifier) error
	DeleteByName(ctx context.Context, namespace, name string) error
}

// SnapshotCache holds the list of names per namespace between requests.
// *cache.RedisCache satisfies it.
type SnapshotCache interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// namespaceSnapshot is only served while Generation matches the
// namespace's current generation, which Release bumps.
type namespaceSnapshot struct {
	Generation int64    `json:"generation"`
	Names      []string `json:"names"`
}

// namespaces cannot contain ':', so this never clashes with a snapshot key
const generationSuffix = ":gen"

// IdentifierService hands out the smallest free identifier of a namespace.
type IdentifierService struct {
	store     Store
	codec     *idgen.Codec
	snapshots SnapshotCache // optional
	decoded   *cache.LRUCache[string, models.DecodeResponse]
	log       *zap.Logger
	now       func() time.Time
}

// NewIdentifierService constructor. snapshots may be nil.
func NewIdentifierService(store Store, codec *idgen.Codec, snapshots SnapshotCache, decodeCacheSize int, log *zap.Logger) *IdentifierService {
	return &IdentifierService{
		store:     store,
		codec:     codec,
		snapshots: snapshots,
		decoded:   cache.NewLRUCache[string, models.DecodeResponse](decodeCacheSize),
		log:       log.Named("service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var namespaceRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

func validateNamespace(ns string) error {
	if !namespaceRE.MatchString(ns) {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, ns)
	}
	return nil
}

// Allocate picks the smallest ordinal not spelled by any name in namespace
// and, unless req.DryRun is set, records its identifier. A save that loses a
// race to another writer drops the snapshot and tries again.
func (s *IdentifierService) Allocate(ctx context.Context, namespace string, req models.AllocateRequest) (*models.AllocateResponse, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}

	for i := 0; i < maxAttempts; i++ {
		names, err := s.snapshot(ctx, namespace)
		if err != nil {
			metrics.Allocations.WithLabelValues("error").Inc()
			return nil, err
		}

		used := make(idgen.UsedSet, len(names))
		for _, name := range names {
			if d := s.Decode(name); d.Valid {
				used.Add(idgen.Ordinal(d.Ordinal))
			} else {
				metrics.ForeignNames.Inc()
			}
		}
		n := idgen.Allocate(used)
		resp := &models.AllocateResponse{
			Namespace: namespace,
			Name:      s.codec.Encode(n),
			Ordinal:   uint64(n),
			DryRun:    req.DryRun,
		}

		if req.DryRun {
			metrics.Allocations.WithLabelValues("dry_run").Inc()
			return resp, nil
		}

		err = s.store.Save(ctx, &models.Identifier{
			Namespace: namespace,
			Name:      resp.Name,
			Ordinal:   resp.Ordinal,
			CreatedAt: s.now(),
		})
		s.invalidate(ctx, namespace)
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.Allocations.WithLabelValues("race").Inc()
			s.log.Info("allocation race, retrying",
				zap.String("namespace", namespace), zap.String("name", resp.Name),
				zap.Int("attempt", i+1), zap.Int("max_attempts", maxAttempts))
			continue
		}
		if err != nil {
			metrics.Allocations.WithLabelValues("error").Inc()
			return nil, err
		}

		metrics.Allocations.WithLabelValues("saved").Inc()
		metrics.AllocatedOrdinal.Observe(float64(n))
		s.log.Debug("allocated", zap.String("namespace", namespace), zap.String("name", resp.Name), zap.Uint64("ordinal", resp.Ordinal))
		return resp, nil
	}

	metrics.Allocations.WithLabelValues("error").Inc()
	return nil, ErrAllocExhausted
}

// List returns the identifiers recorded in namespace.
func (s *IdentifierService) List(ctx context.Context, namespace string) (*models.ListResponse, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	ids, err := s.store.ListByNamespace(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []*models.Identifier{}
	}
	return &models.ListResponse{Namespace: namespace, Identifiers: ids}, nil
}

// Lookup returns the record of name in namespace.
func (s *IdentifierService) Lookup(ctx context.Context, namespace, name string) (*models.Identifier, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if d := s.Decode(name); !d.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIdentifier, d.Error)
	}
	id, err := s.store.FindByName(ctx, namespace, name)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, ErrNotFound
	}
	return id, nil
}

// Release forgets name so its ordinal can be handed out again.
func (s *IdentifierService) Release(ctx context.Context, namespace, name string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	err := s.store.DeleteByName(ctx, namespace, name)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if s.snapshots != nil {
		if _, err := s.snapshots.Incr(ctx, namespace+generationSuffix); err != nil {
			s.log.Warn("snapshot generation bump failed", zap.String("namespace", namespace), zap.Error(err))
		}
	}
	s.invalidate(ctx, namespace)
	return nil
}

// Decode classifies name against the alphabet. Results are memoized since
// the same foreign names show up on every allocation.
func (s *IdentifierService) Decode(name string) models.DecodeResponse {
	if d, ok := s.decoded.Get(name); ok {
		metrics.CacheHits.WithLabelValues("decode").Inc()
		return d
	}
	metrics.CacheMisses.WithLabelValues("decode").Inc()

	d := models.DecodeResponse{Name: name}
	if n, err := s.codec.Parse(name); err != nil {
		d.Error = err.Error()
	} else {
		d.Valid = true
		d.Ordinal = uint64(n)
	}
	s.decoded.Put(name, d)
	return d
}

// snapshot returns the names of namespace, from the cache when it has them.
// The generation is read before the store so that a snapshot built from a
// listing that predates a Release is written under an outdated generation.
func (s *IdentifierService) snapshot(ctx context.Context, namespace string) ([]string, error) {
	if s.snapshots == nil {
		return s.listNames(ctx, namespace)
	}

	gen, err := s.generation(ctx, namespace)
	if err != nil {
		s.log.Warn("snapshot generation read failed", zap.String("namespace", namespace), zap.Error(err))
		return s.listNames(ctx, namespace)
	}

	var snap namespaceSnapshot
	err = s.snapshots.Get(ctx, namespace, &snap)
	switch {
	case err == nil && snap.Generation == gen:
		metrics.CacheHits.WithLabelValues("snapshot").Inc()
		return snap.Names, nil
	case err == nil, errors.Is(err, cache.ErrCacheMiss):
		metrics.CacheMisses.WithLabelValues("snapshot").Inc()
	default:
		s.log.Warn("snapshot cache read failed", zap.String("namespace", namespace), zap.Error(err))
	}

	names, err := s.listNames(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.Set(ctx, namespace, namespaceSnapshot{Generation: gen, Names: names}); err != nil {
		s.log.Warn("snapshot cache write failed", zap.String("namespace", namespace), zap.Error(err))
	}
	return names, nil
}

func (s *IdentifierService) generation(ctx context.Context, namespace string) (int64, error) {
	var gen int64
	err := s.snapshots.Get(ctx, namespace+generationSuffix, &gen)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, nil
	}
	return gen, err
}

func (s *IdentifierService) listNames(ctx context.Context, namespace string) ([]string, error) {
	names, err := s.store.ListNames(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("list names in %s: %w", namespace, err)
	}
	return names, nil
}

func (s *IdentifierService) invalidate(ctx context.Context, namespace string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(ctx, namespace); err != nil {
		s.log.Warn("snapshot cache delete failed", zap.String("namespace", namespace), zap.Error(err))
	}
}
