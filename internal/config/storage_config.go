package config

import "strings"

const (
	storeTypeVar     = "SESSION_STORE"
	sessionDirVar    = "SESSION_DIR"
	sessionKeyVar    = "SESSION_KEY"
	redisAddrVar     = "REDIS_ADDR"
	redisPasswordVar = "REDIS_PASSWORD"
	redisDBVar       = "REDIS_DB"
	sqlitePathVar    = "SQLITE_PATH"
)

type StoreType string

const (
	MemoryStore StoreType = "memory"
	FileStore   StoreType = "file"
	RedisStore  StoreType = "redis"
	SQLiteStore StoreType = "sqlite"
)

// StorageConfig selects where the session record is kept.
type StorageConfig interface {
	GetStoreType() StoreType
	GetSessionDir() string
	GetSessionKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetSQLitePath() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStoreType() StoreType {
	return StoreType(strings.ToLower(GetEnv(storeTypeVar, string(FileStore))))
}

func (Storage) GetSessionDir() string {
	return GetEnv(sessionDirVar, "./data")
}

func (Storage) GetSessionKey() string {
	return GetEnv(sessionKeyVar, "commerce.session")
}

func (Storage) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt(redisDBVar, 0)
}

func (Storage) GetSQLitePath() string {
	return GetEnv(sqlitePathVar, "./data/session.db")
}
