// Package dbtest runs a disposable Postgres container for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/example/kaskroutek/internal/database"
	"github.com/example/kaskroutek/internal/models"
)

// Env is a running Postgres container.
type Env struct {
	PG    *postgres.PostgresContainer
	PGURL string
}

// Setup starts postgres:16-alpine and returns its connection URL.
func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("kaskroutek"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgC.Terminate(context.Background())
		return nil, err
	}
	return &Env{PG: pgC, PGURL: pgURL}, nil
}

// Teardown stops the container.
func (e *Env) Teardown(ctx context.Context) {
	_ = e.PG.Terminate(ctx)
}

// Reset empties every application table.
func Reset(db *gorm.DB) error {
	tables := make([]string, 0, len(database.Models())+len(models.TimerKinds))
	for _, model := range database.Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return err
		}
		tables = append(tables, stmt.Schema.Table)
	}
	for _, kind := range models.TimerKinds {
		tables = append(tables, kind.Table())
	}
	return db.Exec(fmt.Sprintf("TRUNCATE %s", strings.Join(tables, ", "))).Error
}
