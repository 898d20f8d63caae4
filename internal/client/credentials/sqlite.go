package credentials

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/campusshop/internal/client/migrations"
	"github.com/dmitrijs2005/campusshop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/dmitrijs2005/campusshop/internal/dbx"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// OpenSQLite opens (creating if needed) the local database at dsn and applies
// the embedded migrations.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// SQLiteStore keeps the pair in the metadata table under the keys
// common.AccessTokenKey and common.RefreshTokenKey. Both keys are written
// and removed in one transaction so a crash never leaves half a pair.
type SQLiteStore struct {
	db   *sql.DB
	repo func(dbx.DBTX) metadata.Repository
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:   db,
		repo: func(q dbx.DBTX) metadata.Repository { return metadata.NewSQLiteRepository(q) },
	}
}

func (s *SQLiteStore) Load(ctx context.Context) (Pair, error) {
	repo := s.repo(s.db)

	access, _, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return Pair{}, err
	}
	refresh, _, err := repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, p Pair) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, p.Access); err != nil {
			return err
		}
		if p.Refresh == "" {
			return repo.Delete(ctx, common.RefreshTokenKey)
		}
		return repo.Set(ctx, common.RefreshTokenKey, p.Refresh)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.repo(s.db).Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey)
}
