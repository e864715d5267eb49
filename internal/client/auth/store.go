package auth

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/accountkeeper/internal/client/repositories/metadata"
)

// TokenStore persists the token pair between runs.
type TokenStore interface {
	// Load returns empty strings when nothing is stored.
	Load(ctx context.Context) (accessToken, refreshToken string, err error)
	Save(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

// MetadataTokenStore keeps the token pair in the metadata table. Both
// tokens are written and removed together in one transaction.
type MetadataTokenStore struct {
	db *sql.DB
}

func NewMetadataTokenStore(db *sql.DB) *MetadataTokenStore {
	return &MetadataTokenStore{db: db}
}

func (s *MetadataTokenStore) Load(ctx context.Context) (string, string, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	access, err := repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, err := repo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return "", "", err
	}
	return string(access), string(refresh), nil
}

func (s *MetadataTokenStore) Save(ctx context.Context, accessToken, refreshToken string) error {
	return metadata.InTx(ctx, s.db, func(ctx context.Context, repo metadata.Repository) error {
		if err := repo.Set(ctx, metadata.KeyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyRefreshToken, []byte(refreshToken))
	})
}

func (s *MetadataTokenStore) Clear(ctx context.Context) error {
	return metadata.InTx(ctx, s.db, func(ctx context.Context, repo metadata.Repository) error {
		if err := repo.Delete(ctx, metadata.KeyAccessToken); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyRefreshToken)
	})
}

// MemoryTokenStore keeps tokens for the lifetime of the process only.
type MemoryTokenStore struct {
	access, refresh string
}

func (m *MemoryTokenStore) Load(context.Context) (string, string, error) {
	return m.access, m.refresh, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, accessToken, refreshToken string) error {
	m.access, m.refresh = accessToken, refreshToken
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	m.access, m.refresh = "", ""
	return nil
}
