package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const deliveryLogSchema = `
CREATE TABLE IF NOT EXISTS delivery_log (
	id TEXT PRIMARY KEY,
	tenant_key TEXT NOT NULL,
	order_code TEXT NOT NULL,
	event_type TEXT NOT NULL,
	url TEXT NOT NULL,
	status_code INTEGER,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	last_error TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_delivery_log_order ON delivery_log(order_code);
CREATE INDEX IF NOT EXISTS idx_delivery_log_created ON delivery_log(created_at);
`

// OpenDeliveryLog opens (and bootstraps) the SQLite file holding outbound
// delivery audit rows.
func OpenDeliveryLog(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(deliveryLogSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
