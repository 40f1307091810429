package container

import (
	"context"
	"fmt"

	"github.com/USSTM/wms-backend/internal/aws"
	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/database"
	"github.com/USSTM/wms-backend/internal/logging"
	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Store is the configured document store plus whichever client backs it.
type Store struct {
	storage.DocumentStore
	Database    *database.Database
	RedisClient *redis.Client
	S3Service   *aws.S3Service
}

// OpenStore connects the backend selected by cfg.Store.Backend. The
// postgres backend is migrated on open.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Backend {
	case config.StoreDir:
		dir, err := storage.NewDirStore(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		logging.Info("Using directory reference store", "dir", cfg.Store.Dir)
		return &Store{DocumentStore: dir}, nil

	case config.StorePostgres:
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logging.Info("Connected to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port)
		return &Store{DocumentStore: db, Database: db}, nil

	case config.StoreS3:
		s3Service, err := aws.NewS3Service(cfg.AWS)
		if err != nil {
			return nil, err
		}
		// localstack-specific config (buckets are not managed by app in prod)
		if cfg.AWS.EndpointURL != "" {
			if err := s3Service.CreateBucket(ctx); err != nil {
				logging.Info("S3 bucket creation attempted", "bucket", cfg.AWS.Bucket, "result", err)
			}
		}
		logging.Info("Using S3 reference store", "bucket", cfg.AWS.Bucket)
		return &Store{DocumentStore: s3Service, S3Service: s3Service}, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		logging.Info("Using Redis reference store", "addr", cfg.Redis.Addr)
		return &Store{DocumentStore: storage.NewRedisStore(client), RedisClient: client}, nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func (s *Store) Close() {
	if s.RedisClient != nil {
		s.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if s.Database != nil {
		s.Database.Close()
		logging.Info("Database connection closed")
	}
}
