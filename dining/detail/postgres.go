package detail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type restaurantRow struct {
	bun.BaseModel `bun:"table:restaurants,alias:r"`

	RestaurantID string `bun:"restaurant_id,pk"`
	Name         string `bun:"name"`
	Address      string `bun:"address"`
}

// PostgresStore reads restaurant details from a relational table for
// deployments without DynamoDB.
type PostgresStore struct {
	db *bun.DB
}

var _ contractx.DetailStore = (*PostgresStore)(nil)

func NewPostgresStore(db *bun.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresStore{db: db}, nil
}

// OpenPostgres connects with pgdriver and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: detail dsn is required", contractx.ErrNotConfigured)
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) BatchGet(ctx context.Context, ids []string) (map[string]contractx.Detail, error) {
	ids = dedupe(ids)
	out := make(map[string]contractx.Detail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []restaurantRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("restaurant_id", "name", "address").
		Where("restaurant_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: %w", contractx.ErrDetailLookup, err)
	}

	for _, row := range rows {
		out[row.RestaurantID] = contractx.Detail{ID: row.RestaurantID, Name: row.Name, Address: row.Address}
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
