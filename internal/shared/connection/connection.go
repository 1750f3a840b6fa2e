package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-timeoff/internal/shared/config"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	retrylib "github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const retryDelay = 5 * time.Second

// retry runs dial up to attempts times, waiting retryDelay in between.
// Each dial gets its own retryDelay deadline.
func retry(target string, attempts int, dial func(ctx context.Context) error) error {
	log := zap.L().Named("connection").With(zap.String("target", target))
	attempts = max(attempts, 1)

	attempt := 0
	err := retrylib.Do(context.Background(), retrylib.WithMaxRetries(uint64(attempts-1), retrylib.NewConstant(retryDelay)), func(ctx context.Context) error {
		attempt++
		dialCtx, cancel := context.WithTimeout(ctx, retryDelay)
		defer cancel()
		if err := dial(dialCtx); err != nil {
			log.Warn("connect failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err),
			)
			return retrylib.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: giving up after %d attempts: %w", target, attempt, err)
	}
	log.Info("connected", zap.Int("attempt", attempt))
	return nil
}

func ConnectGORMWithRetry(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	err := retry("postgres", cfg.MaxRetries, func(ctx context.Context) error {
		opened, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err != nil {
			return err
		}
		sqlDB, err := opened.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}

		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
		db = opened
		return nil
	})
	return db, err
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	err := retry("redis", maxRetries, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// ConnectKafkaWithRetry checks the broker is reachable and returns a writer
// that hashes keys to partitions, so one request's events stay ordered.
func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafkago.Writer, error) {
	err := retry("kafka", maxRetries, func(ctx context.Context) error {
		conn, err := (&kafkago.Dialer{}).DialContext(ctx, "tcp", broker)
		if err != nil {
			return err
		}
		return conn.Close()
	})
	if err != nil {
		return nil, err
	}
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(broker),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}, nil
}

// BindTx returns a gorm handle whose statements run on tx. A nil tx returns
// db unchanged.
func BindTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	bound := db.Session(&gorm.Session{Context: context.Background(), NewDB: true})
	bound.Statement.ConnPool = tx
	return bound
}
