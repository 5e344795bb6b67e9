package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/TimurBerdyyev/seller-apis/config"
)

const (
	maxRetries     = 5
	dbMaxOpenConns = 10
	retryDelay     = 3 * time.Second
)

type PostgresConnector struct {
	cfg config.DbConfig
	db  *sql.DB
	mu  sync.Mutex
}

func NewPgConnector(cfg config.DbConfig) *PostgresConnector {
	return &PostgresConnector{cfg: cfg}
}

func (pg *PostgresConnector) Connect() (*sql.DB, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db != nil {
		return pg.db, nil
	}

	conStr := pg.cfg.GetConnectionString()

	var err error
	for i := 0; i < maxRetries; i++ {
		pg.db, err = sql.Open("postgres", conStr)
		if err != nil {
			log.Printf("Failed to open Postgres (attempt %d/%d): %v", i+1, maxRetries, err)
			time.Sleep(retryDelay)
			continue
		}

		pg.db.SetMaxOpenConns(dbMaxOpenConns)

		if err = pg.db.Ping(); err != nil {
			log.Printf("Failed to ping Postgres (attempt %d/%d): %v", i+1, maxRetries, err)
			pg.db.Close()
			pg.db = nil
			time.Sleep(retryDelay)
			continue
		}
		return pg.db, nil
	}
	return nil, fmt.Errorf("connecting to postgres after %d attempts: %w", maxRetries, err)
}
