// Command seed fills the database with a load-test account and a tiered
// set of links: a few hot keys, a warm tail, and a large cold tail.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/sdarshil6/url-shortener/internal/config"
	"github.com/sdarshil6/url-shortener/internal/migrations"
	"github.com/sdarshil6/url-shortener/pkg/generator"
)

const (
	hotCount  = 100
	warmCount = 10000
	coldCount = 1000000

	batchSize  = 5000
	numWorkers = 4

	seedEmail    = "loadtest@example.com"
	seedPassword = "LoadTest1!"
)

type seeder struct {
	pool    *pgxpool.Pool
	ownerID int64
	log     *slog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.Default()
	ctx := context.Background()

	migrator, err := migrations.New(cfg.Database.URL, logger)
	if err != nil {
		log.Fatalf("Unable to open migrations: %v", err)
	}
	if err := migrator.Up(); err != nil {
		log.Fatalf("Unable to migrate: %v", err)
	}
	_ = migrator.Close()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	s := &seeder{pool: pool, log: logger}

	if err := s.createOwner(ctx); err != nil {
		log.Fatalf("Failed to create owner: %v", err)
	}

	if err := s.insertTier(ctx, "hot", 1, hotCount, time.Minute); err != nil {
		log.Fatalf("Failed to insert hot links: %v", err)
	}

	if err := s.insertTier(ctx, "warm", 1, warmCount, time.Hour); err != nil {
		log.Fatalf("Failed to insert warm links: %v", err)
	}

	if err := s.insertColdParallel(ctx); err != nil {
		log.Fatalf("Failed to insert cold links: %v", err)
	}

	if _, err := pool.Exec(ctx, "ANALYZE links"); err != nil {
		log.Printf("Warning: analyze failed: %v", err)
	}

	if err := s.verify(ctx); err != nil {
		log.Printf("Warning: data verification failed: %v", err)
	}
}

// createOwner resets the load-test account; its links cascade away with it.
func (s *seeder) createOwner(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, "DELETE FROM users WHERE email = $1", seedEmail); err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, plan) VALUES ($1, $2, 'enterprise') RETURNING id",
		seedEmail, string(hash),
	).Scan(&s.ownerID)
	if err != nil {
		return err
	}

	s.log.Info("seed owner created", "email", seedEmail, "id", s.ownerID)
	return nil
}

// insertTier queues links start..end in batches of batchSize, each row
// aged by step times its index.
func (s *seeder) insertTier(ctx context.Context, tier string, start, end int, step time.Duration) error {
	now := time.Now()

	for i := start; i <= end; i += batchSize {
		batchEnd := min(i+batchSize-1, end)

		batch := &pgx.Batch{}
		for j := i; j <= batchEnd; j++ {
			secret, err := generator.GenerateSecret()
			if err != nil {
				return err
			}
			batch.Queue(
				`INSERT INTO links (key, secret_key, target_url, owner_id, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $5)`,
				fmt.Sprintf("%s_%07d", tier, j),
				secret,
				fmt.Sprintf("https://example.com/%s/%07d", tier, j),
				s.ownerID,
				now.Add(-time.Duration(j)*step),
			)
		}

		if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("batch exec failed: %w", err)
		}
	}

	s.log.Info("tier inserted", "tier", tier, "count", end-start+1)
	return nil
}

func (s *seeder) insertColdParallel(ctx context.Context) error {
	var wg sync.WaitGroup
	errChan := make(chan error, numWorkers)

	rowsPerWorker := coldCount / numWorkers

	for workerID := 0; workerID < numWorkers; workerID++ {
		start := workerID*rowsPerWorker + 1
		end := start + rowsPerWorker - 1
		if workerID == numWorkers-1 {
			end = coldCount
		}

		wg.Add(1)
		go func(id, start, end int) {
			defer wg.Done()

			if err := s.insertTier(ctx, "cold", start, end, time.Second); err != nil {
				errChan <- fmt.Errorf("worker %d failed: %w", id, err)
			}
		}(workerID, start, end)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return err
	}

	return nil
}

func (s *seeder) verify(ctx context.Context) error {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM links WHERE owner_id = $1", s.ownerID).Scan(&count)
	if err != nil {
		return err
	}

	expected := int64(hotCount + warmCount + coldCount)
	if count != expected {
		return fmt.Errorf("expected %d rows but got %d", expected, count)
	}

	s.log.Info("seed verified", "links", count)
	return nil
}
