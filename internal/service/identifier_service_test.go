package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Siddarth2230/branchmoji/internal/models"
	"github.com/Siddarth2230/branchmoji/internal/repository"
	"github.com/Siddarth2230/branchmoji/pkg/alphabet"
	"github.com/Siddarth2230/branchmoji/pkg/cache"
	"github.com/Siddarth2230/branchmoji/pkg/idgen"
)

// memStore is an in-memory Store.
type memStore struct {
	mu    sync.Mutex
	ids   map[string][]*models.Identifier
	next  int64
	saves int
	// sneak is inserted by a "concurrent writer" just before the first save
	sneak string
	// afterList runs once, after the names are read but before they are returned
	afterList func()
}

func newMemStore() *memStore {
	return &memStore{ids: map[string][]*models.Identifier{}}
}

func (m *memStore) seed(ns string, names ...string) {
	for _, n := range names {
		m.next++
		m.ids[ns] = append(m.ids[ns], &models.Identifier{ID: m.next, Namespace: ns, Name: n})
	}
}

func (m *memStore) ListNames(ctx context.Context, ns string) ([]string, error) {
	m.mu.Lock()
	var out []string
	for _, id := range m.ids[ns] {
		out = append(out, id.Name)
	}
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *memStore) ListByNamespace(ctx context.Context, ns string) ([]*models.Identifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Identifier(nil), m.ids[ns]...), nil
}

func (m *memStore) FindByName(ctx context.Context, ns, name string) (*models.Identifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.ids[ns] {
		if id.Name == name {
			return id, nil
		}
	}
	return nil, nil
}

func (m *memStore) Save(ctx context.Context, id *models.Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.sneak != "" {
		m.next++
		m.ids[id.Namespace] = append(m.ids[id.Namespace], &models.Identifier{ID: m.next, Namespace: id.Namespace, Name: m.sneak})
		m.sneak = ""
	}
	for _, existing := range m.ids[id.Namespace] {
		if existing.Name == id.Name {
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, id.Name)
		}
	}
	m.next++
	id.ID = m.next
	m.ids[id.Namespace] = append(m.ids[id.Namespace], id)
	return nil
}

func (m *memStore) DeleteByName(ctx context.Context, ns, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range m.ids[ns] {
		if id.Name == name {
			m.ids[ns] = append(m.ids[ns][:i], m.ids[ns][i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// memCache is a SnapshotCache that stores JSON like RedisCache does.
type memCache struct {
	data    map[string][]byte
	deletes int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string, v any) error {
	raw, ok := c.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, v)
}

func (c *memCache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.deletes++
	delete(c.data, key)
	return nil
}

func (c *memCache) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	if raw, ok := c.data[key]; ok {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
	}
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func newTestService(store Store, snapshots SnapshotCache) *IdentifierService {
	codec := idgen.NewCodec(alphabet.MustParse("ABC"))
	return NewIdentifierService(store, codec, snapshots, 16, zap.NewNop())
}

func TestAllocate(t *testing.T) {
	store := newMemStore()
	store.seed("origin", "A", "C", "main", "feature/login")
	svc := newTestService(store, nil)
	ctx := context.Background()

	resp, err := svc.Allocate(ctx, "origin", models.AllocateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "B", resp.Name)
	assert.Equal(t, uint64(2), resp.Ordinal)

	resp, err = svc.Allocate(ctx, "origin", models.AllocateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "AA", resp.Name)
	assert.Equal(t, uint64(4), resp.Ordinal)

	got, err := svc.Lookup(ctx, "origin", "AA")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got.Ordinal)

	resp, err = svc.Allocate(ctx, "fresh", models.AllocateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "A", resp.Name)
}

func TestAllocateDryRunDoesNotSave(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil)

	for i := 0; i < 3; i++ {
		resp, err := svc.Allocate(context.Background(), "ns", models.AllocateRequest{DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, "A", resp.Name)
		assert.True(t, resp.DryRun)
	}
	assert.Zero(t, store.saves)
}

func TestAllocateRetriesAfterRace(t *testing.T) {
	store := newMemStore()
	store.seed("ns", "A")
	store.sneak = "B"
	snapshots := newMemCache()
	svc := newTestService(store, snapshots)

	resp, err := svc.Allocate(context.Background(), "ns", models.AllocateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "C", resp.Name)
	assert.Equal(t, 2, store.saves)
}

func TestAllocateHealsStaleSnapshot(t *testing.T) {
	store := newMemStore()
	store.seed("ns", "A", "B")
	snapshots := newMemCache()
	require.NoError(t, snapshots.Set(context.Background(), "ns", namespaceSnapshot{Names: []string{"A"}}))
	svc := newTestService(store, snapshots)

	resp, err := svc.Allocate(context.Background(), "ns", models.AllocateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "C", resp.Name)
	_, cached := snapshots.data["ns"]
	assert.False(t, cached, "snapshot must be dropped after a save")
}

// alwaysTaken reports every save as a duplicate.
type alwaysTaken struct{ *memStore }

func (a alwaysTaken) Save(ctx context.Context, id *models.Identifier) error {
	return repository.ErrDuplicate
}

func TestAllocateExhausted(t *testing.T) {
	svc := newTestService(alwaysTaken{newMemStore()}, nil)
	_, err := svc.Allocate(context.Background(), "ns", models.AllocateRequest{})
	assert.True(t, errors.Is(err, ErrAllocExhausted))
}

func TestInvalidNamespace(t *testing.T) {
	svc := newTestService(newMemStore(), nil)
	ctx := context.Background()

	for _, ns := range []string{"", "-x", "has space", "a/b"} {
		_, err := svc.Allocate(ctx, ns, models.AllocateRequest{})
		assert.Truef(t, errors.Is(err, ErrInvalidNamespace), "namespace %q", ns)
	}
	_, err := svc.List(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidNamespace))
}

func TestListEmptyNamespace(t *testing.T) {
	svc := newTestService(newMemStore(), nil)
	resp, err := svc.List(context.Background(), "ns")
	require.NoError(t, err)
	assert.NotNil(t, resp.Identifiers)
	assert.Empty(t, resp.Identifiers)
}

func TestLookup(t *testing.T) {
	store := newMemStore()
	store.seed("ns", "A")
	svc := newTestService(store, nil)
	ctx := context.Background()

	_, err := svc.Lookup(ctx, "ns", "B")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Lookup(ctx, "ns", "main")
	assert.True(t, errors.Is(err, ErrInvalidIdentifier))
}

func TestRelease(t *testing.T) {
	store := newMemStore()
	store.seed("ns", "A", "B", "C")
	snapshots := newMemCache()
	svc := newTestService(store, snapshots)
	ctx := context.Background()

	require.NoError(t, svc.Release(ctx, "ns", "B"))
	assert.True(t, errors.Is(svc.Release(ctx, "ns", "B"), ErrNotFound))
	assert.Equal(t, 1, snapshots.deletes)

	resp, err := svc.Allocate(ctx, "ns", models.AllocateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "B", resp.Name, "released ordinals are reused first")
}

func TestReleaseDuringSnapshotRebuild(t *testing.T) {
	store := newMemStore()
	store.seed("ns", "A", "B", "C")
	snapshots := newMemCache()
	svc := newTestService(store, snapshots)
	ctx := context.Background()

	// B is released after this allocation listed the namespace but before
	// it wrote the snapshot back
	store.afterList = func() {
		require.NoError(t, svc.Release(ctx, "ns", "B"))
	}
	resp, err := svc.Allocate(ctx, "ns", models.AllocateRequest{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "AA", resp.Name)

	resp, err = svc.Allocate(ctx, "ns", models.AllocateRequest{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "B", resp.Name, "a snapshot older than the release must not be served")

	// the rebuilt snapshot is served again until the next release
	resp, err = svc.Allocate(ctx, "ns", models.AllocateRequest{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "B", resp.Name)
	var snap namespaceSnapshot
	require.NoError(t, snapshots.Get(ctx, "ns", &snap))
	assert.Equal(t, int64(1), snap.Generation)
	assert.ElementsMatch(t, []string{"A", "C"}, snap.Names)
}

func TestDecode(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	d := svc.Decode("AC")
	assert.True(t, d.Valid)
	assert.Equal(t, uint64(6), d.Ordinal)
	assert.Empty(t, d.Error)

	d = svc.Decode("A1")
	assert.False(t, d.Valid)
	assert.Zero(t, d.Ordinal)
	assert.Contains(t, d.Error, "not in alphabet")

	// memoized
	assert.Equal(t, d, svc.Decode("A1"))
	assert.Equal(t, 2, svc.decoded.Len())
}
