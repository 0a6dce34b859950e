package repositories

import (
	"database/sql"

	"payrelay/internal/platform/models"
)

type DeliveryLogRepository struct {
	db *sql.DB
}

func NewDeliveryLogRepository(db *sql.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

func (r *DeliveryLogRepository) Create(rec *models.DeliveryRecord) error {
	var status sql.NullInt64
	if rec.StatusCode != nil {
		status = sql.NullInt64{Int64: int64(*rec.StatusCode), Valid: true}
	}

	query := `
		INSERT INTO delivery_log (id, tenant_key, order_code, event_type, url, status_code, duration_ms, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, rec.ID, rec.TenantKey, rec.OrderCode, rec.EventType, rec.URL, status, rec.DurationMs, rec.LastError, rec.CreatedAt)
	return err
}

func (r *DeliveryLogRepository) ListByOrderCode(orderCode string, limit int) ([]*models.DeliveryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_key, order_code, event_type, url, status_code, duration_ms, last_error, created_at
		FROM delivery_log WHERE order_code = ? ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.Query(query, orderCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.DeliveryRecord
	for rows.Next() {
		var rec models.DeliveryRecord
		var status sql.NullInt64

		if err := rows.Scan(&rec.ID, &rec.TenantKey, &rec.OrderCode, &rec.EventType, &rec.URL, &status, &rec.DurationMs, &rec.LastError, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if status.Valid {
			code := int(status.Int64)
			rec.StatusCode = &code
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// PruneBefore deletes audit rows older than the cutoff and reports how many
// went away.
func (r *DeliveryLogRepository) PruneBefore(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM delivery_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DeliveryLogRepository) Ping() error {
	return r.db.Ping()
}
