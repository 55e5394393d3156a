package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/persistence/file"
	"github.com/hookflow/hookflow/pkg/persistence/memory"
	"github.com/hookflow/hookflow/pkg/persistence/postgresql"
	"github.com/hookflow/hookflow/pkg/persistence/redis"
)

// NewPersistence builds the storage backend selected by the database
// URL scheme: postgres://, redis://, memory://, or a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(err)
		}

		return store
	case strings.HasPrefix(databaseURL, "redis://"):
		store, err := redis.NewPersistence(databaseURL)
		if err != nil {
			panic(err)
		}

		return store
	case databaseURL == "memory://", databaseURL == "":
		return memory.NewPersistence()
	default:
		return file.NewPersistence(databaseURL)
	}
}
