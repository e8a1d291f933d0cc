package config

type StoreConfig interface {
	GetTokenStoreDriver() string
	GetTokenStoreDSN() string
	GetTokenSealKey() string
}

const (
	TokenStoreMemory   = "memory"
	TokenStoreSQLite   = "sqlite"
	TokenStorePostgres = "postgres"
)

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetTokenStoreDriver() string {
	return GetEnv("TOKEN_STORE", TokenStoreMemory)
}

// GetTokenStoreDSN is a file path for sqlite and a connection URL for postgres.
func (Store) GetTokenStoreDSN() string {
	return GetEnv("TOKEN_STORE_DSN", "./data/tokens.db")
}

// GetTokenSealKey returns a 64 char hex key. When empty tokens are stored in the clear.
func (Store) GetTokenSealKey() string {
	return GetEnv("TOKEN_SEAL_KEY", "")
}
