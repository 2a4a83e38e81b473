// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package meallog persists logged meals. SQLite is the default backend;
// PostgreSQL is available for shared deployments. Both use the same schema.
package meallog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/feastfit/pkg/types"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// timeFmt is fixed-width UTC so lexical order matches time order and a
// date prefix selects one UTC day.
const timeFmt = "2006-01-02T15:04:05.000000000Z"

const dateFmt = "2006-01-02"

// ErrInvalidLog is returned when a log lacks a required field.
var ErrInvalidLog = errors.New("invalid meal log")

// Store reads and writes meal logs.
type Store struct {
	db         *sql.DB
	driver     string
	maxResults int
	now        func() time.Time
}

// Open connects to the configured database and creates the schema if it
// does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var dsn string
	switch driver {
	case DriverSQLite:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("sqlite3 store needs a database path")
		}
		if cfg.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dsn = cfg.DSN
		if dsn != ":memory:" && !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		}
	case DriverPostgres:
		dsn = cfg.DSN
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite && cfg.DSN == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{db: db, driver: driver, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS meal_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			restaurant_id TEXT,
			restaurant_name TEXT,
			restaurant_url TEXT,
			restaurant_address TEXT,
			fit_score INTEGER,
			fit_label TEXT,
			dish_name TEXT,
			calories DOUBLE PRECISION,
			protein DOUBLE PRECISION,
			carbs DOUBLE PRECISION,
			fat DOUBLE PRECISION,
			meal_type TEXT NOT NULL,
			location_text TEXT,
			source TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meal_logs_user_created ON meal_logs(user_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Insert stores l and returns it with defaults filled: a new id, meal type
// lunch, source account, and the current time.
func (s *Store) Insert(ctx context.Context, l types.MealLog) (types.MealLog, error) {
	if strings.TrimSpace(l.UserID) == "" {
		return l, fmt.Errorf("%w: user id is required", ErrInvalidLog)
	}
	if l.MealType == "" {
		l.MealType = types.DefaultMealType
	}
	if !l.MealType.Valid() {
		return l, fmt.Errorf("%w: unknown meal type %q", ErrInvalidLog, l.MealType)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Source == "" {
		l.Source = types.SourceAccount
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
	}
	l.CreatedAt = l.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO meal_logs (
			id, user_id, restaurant_id, restaurant_name, restaurant_url, restaurant_address,
			fit_score, fit_label, dish_name, calories, protein, carbs, fat,
			meal_type, location_text, source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		l.ID, l.UserID, l.RestaurantID, l.RestaurantName, l.RestaurantURL, l.RestaurantAddress,
		l.FitScore, l.FitLabel, l.DishName, l.Calories, l.Protein, nullFloat(l.Carbs), nullFloat(l.Fat),
		string(l.MealType), l.LocationText, l.Source, l.CreatedAt.Format(timeFmt),
	)
	if err != nil {
		return l, fmt.Errorf("inserting meal log: %w", err)
	}
	return l, nil
}

const selectColumns = `SELECT id, user_id, restaurant_id, restaurant_name, restaurant_url, restaurant_address,
	fit_score, fit_label, dish_name, calories, protein, carbs, fat,
	meal_type, location_text, source, created_at FROM meal_logs`

// ListByUser returns userID's logs newest first. A limit of zero or less
// uses the store default.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]types.MealLog, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	return s.query(ctx,
		selectColumns+` WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
}

// ListByUserOn returns userID's logs from the UTC calendar day of day,
// newest first.
func (s *Store) ListByUserOn(ctx context.Context, userID string, day time.Time) ([]types.MealLog, error) {
	prefix := day.UTC().Format(dateFmt) + "%"
	return s.query(ctx,
		selectColumns+` WHERE user_id = ? AND created_at LIKE ? ORDER BY created_at DESC, id DESC`,
		userID, prefix)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]types.MealLog, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("querying meal logs: %w", err)
	}
	defer rows.Close()

	logs := []types.MealLog{}
	for rows.Next() {
		var (
			l                                types.MealLog
			restaurantID, name, url, address sql.NullString
			label, dish, location, source    sql.NullString
			fitScore                         sql.NullInt64
			calories, protein, carbs, fat    sql.NullFloat64
			mealType, createdAt              string
		)
		if err := rows.Scan(&l.ID, &l.UserID, &restaurantID, &name, &url, &address,
			&fitScore, &label, &dish, &calories, &protein, &carbs, &fat,
			&mealType, &location, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning meal log: %w", err)
		}

		l.RestaurantID = restaurantID.String
		l.RestaurantName = name.String
		l.RestaurantURL = url.String
		l.RestaurantAddress = address.String
		l.FitScore = int(fitScore.Int64)
		l.FitLabel = label.String
		l.DishName = dish.String
		l.Calories = calories.Float64
		l.Protein = protein.Float64
		l.Carbs = floatPtr(carbs)
		l.Fat = floatPtr(fat)
		l.MealType = types.MealType(mealType)
		l.LocationText = location.String
		l.Source = source.String

		t, err := time.Parse(timeFmt, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		l.CreatedAt = t
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meal logs: %w", err)
	}
	return logs, nil
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
