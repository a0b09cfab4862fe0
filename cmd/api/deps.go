// cmd/api/deps.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"dubbing-backend/internal/config"
	"dubbing-backend/internal/draftstore"
	"dubbing-backend/internal/requests"
	"dubbing-backend/internal/storage"
	"dubbing-backend/internal/upstream"
	"dubbing-backend/internal/userstore"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	startupTimeout = 10 * time.Second
	redisPrefix    = "dubbing:"
	// trackerTTL drops idle per-user request counters.
	trackerTTL = time.Hour
)

// deps holds what main wires together and must release on shutdown.
type deps struct {
	users   userstore.Store
	drafts  draftstore.Store
	tracker requests.Tracker
	storage storage.Storage
	client  *upstream.Client
	checks  map[string]func(context.Context) error
	closers []func(context.Context) error
}

func (d *deps) onClose(fn func(context.Context) error) {
	d.closers = append(d.closers, fn)
}

func (d *deps) close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			slog.Warn("close dependency", "error", err)
		}
	}
}

func openDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	d := &deps{
		client: upstream.NewClient(cfg.DubAPIURL, cfg.UpstreamTimeout),
		checks: map[string]func(context.Context) error{},
	}

	if err := d.openUserStore(ctx, cfg); err != nil {
		d.close(ctx)
		return nil, err
	}
	if err := d.openRedis(ctx, cfg); err != nil {
		d.close(ctx)
		return nil, err
	}
	if err := d.openStorage(ctx, cfg); err != nil {
		d.close(ctx)
		return nil, err
	}
	return d, nil
}

func (d *deps) openUserStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.UserStore {
	case config.UserStorePostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		d.onClose(func(context.Context) error { return db.Close() })

		// Connection pool: prevents overwhelming DB under concurrent load
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		// Verify connection at startup, fail fast rather than accepting traffic
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}
		store := &userstore.Postgres{DB: db}
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}

		var dbName string
		db.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbName)
		slog.Info("user store: postgres", "database", dbName)

		d.users = store
		d.checks["postgres"] = store.Ping

	case config.UserStoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		d.onClose(client.Disconnect)

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fmt.Errorf("mongo ping: %w", err)
		}
		store := userstore.NewMongo(client.Database(cfg.MongoDB))
		if err := store.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		slog.Info("user store: mongo", "database", cfg.MongoDB)

		d.users = store
		d.checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }

	case config.UserStoreHTTP:
		slog.Info("user store: dubbing backend", "url", cfg.DubAPIURL)
		d.users = &userstore.Mirror{Client: d.client}

	default:
		slog.Info("user store: none, preferences live in the session token only")
		d.users = userstore.Nop{}
	}
	return nil
}

// openRedis shares drafts and request sequencing between instances when
// REDIS_ADDR is set; otherwise both stay in process.
func (d *deps) openRedis(ctx context.Context, cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		slog.Info("drafts: in memory", "ttl", cfg.DraftTTL)
		d.drafts = draftstore.NewMemory(cfg.DraftTTL)
		d.tracker = requests.NewMemory()
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	d.onClose(func(context.Context) error { return rdb.Close() })

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	slog.Info("drafts: redis", "addr", cfg.RedisAddr, "ttl", cfg.DraftTTL)

	d.drafts = draftstore.NewRedis(rdb, redisPrefix, cfg.DraftTTL)
	d.tracker = requests.NewRedis(rdb, redisPrefix, trackerTTL)
	d.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	return nil
}

// Storage (swappable: LocalStorage in dev → S3 in production).
// Handler/service code never changes, only this wiring changes.
func (d *deps) openStorage(ctx context.Context, cfg *config.Config) error {
	if cfg.StorageType == "s3" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.AWSBucket, cfg.AWSRegion, cfg.AWSPrefix)
		if err != nil {
			return err
		}
		slog.Info("uploads: s3", "bucket", cfg.AWSBucket, "prefix", cfg.AWSPrefix)
		d.storage = s3Storage
		return nil
	}

	local, err := storage.NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		return err
	}
	slog.Info("uploads: local", "dir", cfg.UploadDir)
	d.storage = local
	return nil
}
