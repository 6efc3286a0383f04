package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"price-monitor-bot/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the SQLite-backed Store.
type DB struct {
	conn *sql.DB
}

var _ Store = (*DB)(nil)

// New opens (or creates) the SQLite database at the given path.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Println("Database initialized")
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		current_price REAL,
		target_price REAL,
		last_checked DATETIME,
		last_error TEXT,
		consecutive_failures INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, url)
	);
	CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		price REAL NOT NULL,
		checked_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

const itemColumns = "id, user_id, url, title, current_price, target_price, last_checked, last_error, consecutive_failures, created_at"

func scanItem(row interface{ Scan(...any) error }) (*models.TrackedItem, error) {
	var it models.TrackedItem
	var title, lastError sql.NullString
	var currentPrice, targetPrice sql.NullFloat64
	var lastChecked sql.NullTime

	err := row.Scan(&it.ID, &it.UserID, &it.URL, &title, &currentPrice, &targetPrice,
		&lastChecked, &lastError, &it.ConsecutiveFailures, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	if title.Valid {
		it.Title = title.String
	}
	if lastError.Valid {
		it.LastError = lastError.String
	}
	if currentPrice.Valid {
		p := currentPrice.Float64
		it.CurrentPrice = &p
	}
	if targetPrice.Valid {
		p := targetPrice.Float64
		it.TargetPrice = &p
	}
	if lastChecked.Valid {
		it.LastChecked = lastChecked.Time
	}
	return &it, nil
}

func (db *DB) queryItems(query string, args ...any) ([]models.TrackedItem, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.TrackedItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// Upsert returns the existing item for (user_id, url) or inserts a new one.
func (db *DB) Upsert(userID int64, url string) (*models.TrackedItem, bool, error) {
	existing, err := scanItem(db.conn.QueryRow(
		"SELECT "+itemColumns+" FROM products WHERE user_id = ? AND url = ?", userID, url))
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	res, err := db.conn.Exec("INSERT INTO products (user_id, url) VALUES (?, ?)", userID, url)
	if err != nil {
		return nil, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	it, err := db.GetByID(id)
	if err != nil {
		return nil, false, err
	}
	return it, true, nil
}

// ListForUser returns a user's items in insertion order.
func (db *DB) ListForUser(userID int64) ([]models.TrackedItem, error) {
	return db.queryItems("SELECT "+itemColumns+" FROM products WHERE user_id = ? ORDER BY id", userID)
}

// ListAll returns every tracked item.
func (db *DB) ListAll() ([]models.TrackedItem, error) {
	return db.queryItems("SELECT " + itemColumns + " FROM products ORDER BY id")
}

// GetByID returns one item by id.
func (db *DB) GetByID(id int64) (*models.TrackedItem, error) {
	it, err := scanItem(db.conn.QueryRow("SELECT "+itemColumns+" FROM products WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return it, err
}

// itemAt resolves a 1-based index in ListForUser order.
func (db *DB) itemAt(userID int64, index int) (*models.TrackedItem, error) {
	items, err := db.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(items) {
		return nil, ErrNotFound
	}
	return &items[index-1], nil
}

// RemoveAt deletes the item at the 1-based index along with its history.
func (db *DB) RemoveAt(userID int64, index int) (*models.TrackedItem, error) {
	it, err := db.itemAt(userID, index)
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM price_history WHERE product_id = ?", it.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM products WHERE id = ? AND user_id = ?", it.ID, userID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return it, nil
}

// SetTargetPriceAt sets the target price on the item at the 1-based index.
func (db *DB) SetTargetPriceAt(userID int64, index int, price float64) (*models.TrackedItem, error) {
	it, err := db.itemAt(userID, index)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec("UPDATE products SET target_price = ? WHERE id = ?", price, it.ID); err != nil {
		return nil, err
	}
	return db.GetByID(it.ID)
}

// RecordCheckSuccess commits a successful extraction in one transaction.
func (db *DB) RecordCheckSuccess(id int64, title string, price float64, at time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	res, err := tx.Exec(
		"UPDATE products SET title = ?, current_price = ?, last_checked = ?, last_error = NULL, consecutive_failures = 0 WHERE id = ?",
		title, price, at, id,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return ErrNotFound
	}
	if _, err := tx.Exec(
		"INSERT INTO price_history (product_id, price, checked_at) VALUES (?, ?, ?)",
		id, price, at,
	); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// RecordCheckFailure stores the failure reason, leaving price and title intact.
func (db *DB) RecordCheckFailure(id int64, reason string, at time.Time) error {
	res, err := db.conn.Exec(
		"UPDATE products SET last_error = ?, last_checked = ?, consecutive_failures = consecutive_failures + 1 WHERE id = ?",
		reason, at, id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// History returns the most recent recorded prices for an item.
func (db *DB) History(id int64, limit int) ([]models.PricePoint, error) {
	rows, err := db.conn.Query(
		"SELECT id, product_id, price, checked_at FROM price_history WHERE product_id = ? ORDER BY id DESC LIMIT ?",
		id, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Price, &p.CheckedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
