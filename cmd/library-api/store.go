package main

import (
	"context"
	"fmt"

	"github.com/bookshelf/library-api/internal/api/handler"
	"github.com/bookshelf/library-api/internal/core/ports"
	"github.com/bookshelf/library-api/internal/infrastructure/config"
	"github.com/bookshelf/library-api/internal/infrastructure/db/memory"
	"github.com/bookshelf/library-api/internal/infrastructure/db/mongo"
	"github.com/bookshelf/library-api/internal/infrastructure/db/postgres"
)

// store bundles the repositories of the configured driver with the probes
// and cleanup that come with its connection.
type store struct {
	users  ports.UserRepository
	books  ports.BookRepository
	health map[string]handler.Pinger
	close  func()
}

// openStore connects to the driver named in cfg. With prepare set the
// schema is brought up to date first (migrations or indexes).
func openStore(ctx context.Context, cfg *config.Config, prepare bool) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Store.PostgresURL})
		if err != nil {
			return nil, err
		}
		if prepare {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &store{
			users:  postgres.NewUserRepository(pool),
			books:  postgres.NewBookRepository(pool),
			health: map[string]handler.Pinger{"postgres": pool},
			close:  pool.Close,
		}, nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		users := mongo.NewUserRepository(db)
		books := mongo.NewBookRepository(db)
		if prepare {
			if err := users.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, err
			}
			if err := books.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, err
			}
		}
		return &store{
			users:  users,
			books:  books,
			health: map[string]handler.Pinger{"mongo": mongo.Pinger{Client: client}},
			close:  func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverMemory:
		return &store{
			users:  memory.NewUserRepository(),
			books:  memory.NewBookRepository(),
			health: map[string]handler.Pinger{},
			close:  func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
