package identity

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	return NewRegistry(client, logger.NewTestLogger())
}

func TestAliasLifecycle(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	// No alias yet: the address itself comes back.
	name, err := reg.GetAlias(ctx, "AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", name)

	require.NoError(t, reg.SetAlias(ctx, "AA:BB:CC:DD:EE:FF", "laptop"))

	// Lookup is case-insensitive because both sides fold.
	name, err = reg.GetAlias(ctx, "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	assert.Equal(t, "laptop", name)

	require.NoError(t, reg.RemoveAlias(ctx, "aa:bb:cc:dd:ee:ff"))

	name, err = reg.GetAlias(ctx, "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", name)
}

func TestGetAliasesAlignsWithInput(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.SetAlias(ctx, "aa:bb", "first"))
	require.NoError(t, reg.SetAlias(ctx, "cc:dd", "third"))

	names, err := reg.GetAliases(ctx, []string{"AA:BB", "ee:ff", "cc:dd"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "", "third"}, names)

	names, err = reg.GetAliases(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListAliases(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.SetAlias(ctx, "aa:bb", "one"))
	require.NoError(t, reg.SetAlias(ctx, "cc:dd", "two"))

	aliases, err := reg.ListAliases(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"aa:bb": "one", "cc:dd": "two"}, aliases)
}

func TestIgnoreSet(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddIgnored(ctx, "AA:BB", "cc:dd"))

	ignored, err := reg.ListIgnored(ctx)
	require.NoError(t, err)
	assert.Contains(t, ignored, "aa:bb")
	assert.Contains(t, ignored, "cc:dd")
	assert.Len(t, ignored, 2)

	require.NoError(t, reg.RemoveIgnored(ctx, "aa:bb"))

	ignored, err = reg.ListIgnored(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ignored, "aa:bb")
	assert.Len(t, ignored, 1)
}

func TestKnownSet(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddKnown(ctx, "aa:bb", "cc:dd", "ee:ff"))

	known, err := reg.ListKnown(ctx)
	require.NoError(t, err)
	assert.Len(t, known, 3)

	require.NoError(t, reg.RemoveKnown(ctx, "aa:bb", "cc:dd"))

	known, err = reg.ListKnown(ctx)
	require.NoError(t, err)
	assert.Len(t, known, 1)
	assert.Contains(t, known, "ee:ff")

	require.NoError(t, reg.FlushKnown(ctx))

	known, err = reg.ListKnown(ctx)
	require.NoError(t, err)
	assert.Empty(t, known)

	// Empty inputs are no-ops, not errors.
	require.NoError(t, reg.AddKnown(ctx))
	require.NoError(t, reg.RemoveKnown(ctx))
}

func TestReplaceAll(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.SetAlias(ctx, "aa:bb", "old"))
	require.NoError(t, reg.AddIgnored(ctx, "11:22"))
	require.NoError(t, reg.AddKnown(ctx, "aa:bb", "11:22"))

	err := reg.ReplaceAll(ctx,
		map[string]string{"CC:DD": "new"},
		[]string{"EE:FF"})
	require.NoError(t, err)

	aliases, err := reg.ListAliases(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"cc:dd": "new"}, aliases)

	ignored, err := reg.ListIgnored(ctx)
	require.NoError(t, err)
	assert.Len(t, ignored, 1)
	assert.Contains(t, ignored, "ee:ff")

	// The known set survives a replace.
	known, err := reg.ListKnown(ctx)
	require.NoError(t, err)
	assert.Len(t, known, 2)
}

func TestStoreErrorsAreTransient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	reg := NewRegistry(client, logger.NewTestLogger())

	mr.Close()

	err := reg.SetAlias(context.Background(), "aa:bb", "name")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = reg.ListIgnored(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
