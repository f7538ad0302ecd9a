package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-commerce-session/internal/config"
	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/jrsteele09/go-commerce-session/session/filestore"
	"github.com/jrsteele09/go-commerce-session/session/memstore"
	"github.com/jrsteele09/go-commerce-session/session/redisstore"
	"github.com/jrsteele09/go-commerce-session/session/sqlstore"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Guest refresh tokens are issued for 30 days; a record older than that is useless.
const redisSessionTTL = 30 * 24 * time.Hour

func noopClose() error { return nil }

// openStorage builds the configured session storage and a function releasing it.
func openStorage(ctx context.Context, c config.Config) (session.Storage, func() error, error) {
	switch c.GetStoreType() {
	case config.MemoryStore:
		return memstore.New(), noopClose, nil

	case config.FileStore:
		fs, err := filestore.New(c.GetSessionDir())
		if err != nil {
			return nil, nil, errors.Wrap(err, "[openStorage] file")
		}
		return fs, noopClose, nil

	case config.RedisStore:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, errors.Wrapf(err, "[openStorage] redis %s", c.GetRedisAddr())
		}
		prefix := c.GetAppName() + ":"
		return redisstore.New(rdb, redisstore.WithPrefix(prefix), redisstore.WithTTL(redisSessionTTL)), rdb.Close, nil

	case config.SQLiteStore:
		path := c.GetSQLitePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, errors.Wrap(err, "[openStorage] sqlite directory")
		}
		db, err := sql.Open("sqlite3", path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "[openStorage] sqlite %s", path)
		}
		store, err := sqlstore.New(db, sqlstore.DefaultTable)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown session store %q", c.GetStoreType())
}
