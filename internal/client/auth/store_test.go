package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataTokenStore(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDatabase(ctx, filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewMetadataTokenStore(db)

	a, r, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Empty(t, r)

	require.NoError(t, s.Save(ctx, "access", "refresh"))
	a, r, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access", a)
	assert.Equal(t, "refresh", r)

	require.NoError(t, s.Clear(ctx))
	a, r, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Empty(t, r)
}
