package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var DB *Database

// LoadEnv loads the optional .env file. Missing file is fine - production
// deployments set real environment variables.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
}

func ConnectDB() {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		log.Fatalf("DB ping error: %v", err)
	}

	DB = NewDatabase(db)
	log.Println("Connected to Postgres with connection pooling")
}

// Scanner is the single-row result shape shared by the retrying pool
// and plain transactions (*sql.Row satisfies it).
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Database wraps the pool so every query, exec and row scan runs the
// transient-failure retry policy before an error reaches a handler.
// Statements inside an open transaction are not retried - a transaction
// that hits a transient failure fails as a whole.
type Database struct {
	pool *sql.DB
}

func NewDatabase(pool *sql.DB) *Database {
	return &Database{pool: pool}
}

func (d *Database) QueryRow(query string, args ...interface{}) Scanner {
	return &retryRow{pool: d.pool, query: query, args: args}
}

func (d *Database) Query(query string, args ...interface{}) (*sql.Rows, error) {
	var rows *sql.Rows
	err := WithRetry(func() error {
		var qerr error
		rows, qerr = d.pool.Query(query, args...)
		return qerr
	})
	return rows, err
}

func (d *Database) Exec(query string, args ...interface{}) (sql.Result, error) {
	var result sql.Result
	err := WithRetry(func() error {
		var xerr error
		result, xerr = d.pool.Exec(query, args...)
		return xerr
	})
	return result, err
}

func (d *Database) Begin() (*sql.Tx, error) {
	var tx *sql.Tx
	err := WithRetry(func() error {
		var berr error
		tx, berr = d.pool.Begin()
		return berr
	})
	return tx, err
}

func (d *Database) Ping() error {
	return WithRetry(d.pool.Ping)
}

// retryRow defers execution to Scan so the whole query+scan round trip
// can be retried.
type retryRow struct {
	pool  *sql.DB
	query string
	args  []interface{}
}

func (r *retryRow) Scan(dest ...interface{}) error {
	return WithRetry(func() error {
		return r.pool.QueryRow(r.query, r.args...).Scan(dest...)
	})
}

// TxQuerier adapts an open transaction to the Database query shape so
// shared helpers can run against either.
type TxQuerier struct {
	tx *sql.Tx
}

func WrapTx(tx *sql.Tx) *TxQuerier {
	return &TxQuerier{tx: tx}
}

func (t *TxQuerier) QueryRow(query string, args ...interface{}) Scanner {
	return t.tx.QueryRow(query, args...)
}

func (t *TxQuerier) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.Query(query, args...)
}

const (
	retryAttempts = 3
	retryPause    = 100 * time.Millisecond
)

// WithRetry runs fn, retrying on transient database failures.
// Validation and not-found errors are returned immediately.
func WithRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt < retryAttempts {
			time.Sleep(retryPause)
		}
	}
	return err
}

func isTransient(err error) bool {
	if err == sql.ErrNoRows {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "the database system is starting up") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected")
}
