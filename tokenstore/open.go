package tokenstore

import (
	"context"
	"fmt"

	"github.com/makita-adocao/makita-web/internal/config"
	"github.com/rs/zerolog/log"
)

// Open builds the repo selected by cfg, sealing it when a key is configured
func Open(ctx context.Context, cfg config.StoreConfig) (Repo, error) {
	var (
		repo Repo
		err  error
	)

	switch driver := cfg.GetTokenStoreDriver(); driver {
	case config.TokenStoreMemory:
		repo = NewInMemoryRepo()
	case config.TokenStoreSQLite:
		repo, err = NewSQLiteRepo(ctx, cfg.GetTokenStoreDSN())
	case config.TokenStorePostgres:
		repo, err = NewPostgresRepo(ctx, cfg.GetTokenStoreDSN())
	default:
		return nil, fmt.Errorf("[tokenstore Open] unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	key := cfg.GetTokenSealKey()
	if key == "" {
		log.Info().Str("driver", cfg.GetTokenStoreDriver()).Msg("Token store opened")
		return repo, nil
	}
	sealed, err := NewSealedRepo(repo, key)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	log.Info().Str("driver", cfg.GetTokenStoreDriver()).Msg("Token store opened (sealed)")
	return sealed, nil
}
