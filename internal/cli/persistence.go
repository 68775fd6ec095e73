package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"signs-study-service/internal/app"
	"signs-study-service/internal/config"
	"signs-study-service/internal/infra/memory"
	"signs-study-service/internal/infra/postgres"
	infraredis "signs-study-service/internal/infra/redis"
	"signs-study-service/internal/infra/sqlite"
	"signs-study-service/internal/practice"
)

// backends owns the connections behind a Persistence handle.
type backends struct {
	pool        *pgxpool.Pool
	redisClient *redis.Client
	sqliteStore *sqlite.ProgressStore
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redisClient != nil {
		_ = b.redisClient.Close()
	}
	if b.sqliteStore != nil {
		_ = b.sqliteStore.Close()
	}
}

// buildPersistence wires the stores selected by cfg. The catalog comes from
// Postgres when configured, otherwise from the built-in sample; Redis, when
// configured, fronts the catalog and tracks session liveness.
func buildPersistence(ctx context.Context, cfg config.Config) (app.Persistence, *backends, error) {
	b := &backends{}
	var err error

	if cfg.Redis.Addr != "" {
		b.redisClient = newRedisClient(cfg)
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	if cfg.Postgres.URL != "" {
		b.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return app.Persistence{}, nil, err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalog())
	if b.pool != nil {
		loader = postgres.NewCatalogLoader(b.pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.CatalogRepository
	if b.redisClient != nil {
		catalog = infraredis.NewCatalogRepository(b.redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var sessions app.SessionRepository
	if b.redisClient != nil {
		sessions = infraredis.NewSessionStore(b.redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var progress app.ProgressStore
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		progress = infraredis.NewProgressStore(b.redisClient)
	case config.DriverPostgres:
		progress = postgres.NewProgressStore(b.pool)
	case config.DriverSQLite:
		b.sqliteStore, err = sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return app.Persistence{}, nil, err
		}
		progress = b.sqliteStore
	case config.DriverMemory:
		progress = memory.NewProgressStore()
	default:
		b.Close()
		return app.Persistence{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return app.Persistence{Progress: progress, Catalog: catalog, Sessions: sessions}, b, nil
}

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// invalidateCatalogCache drops the shared catalog copy so running services
// reload it on their next read. It reports false when Redis is not configured.
func invalidateCatalogCache(ctx context.Context, cfg config.Config) (bool, error) {
	if cfg.Redis.Addr == "" {
		return false, nil
	}
	client := newRedisClient(cfg)
	defer client.Close()
	if err := infraredis.NewCatalogRepository(client, nil, 0).Invalidate(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func studyConfig(cfg config.Config) app.StudyConfig {
	def := app.DefaultStudyConfig()
	distractors := def.Distractors
	if d := cfg.Study.Distractors; d != nil && *d >= 0 {
		distractors = *d
	}
	return app.StudyConfig{
		PracticeLimit:   config.OrDefault(cfg.Study.PracticeLimit, def.PracticeLimit),
		Distractors:     distractors,
		MockPassCorrect: config.OrDefault(cfg.Study.MockPassCorrect, def.MockPassCorrect),
		PassPercent:     config.OrDefault(cfg.Study.PassPercent, def.PassPercent),
	}
}

func newStudyService(p app.Persistence, cfg config.Config) *app.StudyService {
	return app.NewStudyService(p, studyConfig(cfg), practice.NewSharedRand())
}
