package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/event/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const insertQuery = `
    INSERT INTO inventory_events (
        id, merchant_id, event_type, product_id, location_id,
        quantity_delta, running_balance, reference_type, reference_id,
        notes, created_by, created_at
    )
    VALUES (
        :id, :merchant_id, :event_type, :product_id, :location_id,
        :quantity_delta, :running_balance, :reference_type, :reference_id,
        :notes, :created_by, :created_at
    )
`

// Insert appends one ledger row on any Queryer so orchestrators can pair it
// with a balance mutation inside their own transaction.
func Insert(ctx context.Context, q postgres.Queryer, ev *model.InventoryEvent) error {
	_, err := sqlx.NamedExecContext(ctx, q, insertQuery, ev)
	return err
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Insert(ctx context.Context, ev *model.InventoryEvent) error {
	return Insert(ctx, r.DB, ev)
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.InventoryEvent, error) {
	var ev model.InventoryEvent
	query := `SELECT * FROM inventory_events WHERE merchant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &ev, query, merchantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

func buildFilterClause(f *dto.EventFilters, args map[string]interface{}) string {
	conditions := []string{"merchant_id = :merchant_id"}
	args["merchant_id"] = f.MerchantID

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		conditions = append(conditions, "location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.EventType != "" {
		conditions = append(conditions, "event_type = :event_type")
		args["event_type"] = f.EventType
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	return " WHERE " + strings.Join(conditions, " AND ")
}

func (r *PGRepository) FindMany(ctx context.Context, f *dto.EventFilters) ([]model.InventoryEvent, int, error) {
	var events []model.InventoryEvent
	var count int

	args := map[string]interface{}{}
	whereClause := buildFilterClause(f, args)

	countQuery := "SELECT count(*) FROM inventory_events" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM inventory_events" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &events, args)
	return events, count, err
}

func (r *PGRepository) GetRecent(ctx context.Context, merchantID string, limit int) ([]model.InventoryEvent, error) {
	var events []model.InventoryEvent
	query := `SELECT * FROM inventory_events WHERE merchant_id = $1 ORDER BY created_at DESC LIMIT $2`
	err := r.DB.SelectContext(ctx, &events, query, merchantID, limit)
	return events, err
}

func (r *PGRepository) GetStats(ctx context.Context, merchantID string, f *dto.EventFilters) ([]dto.EventTypeStat, error) {
	filters := *f
	filters.MerchantID = merchantID

	args := map[string]interface{}{}
	whereClause := buildFilterClause(&filters, args)

	query := `
        SELECT event_type, count(*) AS count, COALESCE(SUM(quantity_delta), 0) AS net_change
        FROM inventory_events` + whereClause + `
        GROUP BY event_type
        ORDER BY event_type
    `

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	var stats []dto.EventTypeStat
	err = nstmt.SelectContext(ctx, &stats, args)
	return stats, err
}

func (r *PGRepository) GetProductSummary(ctx context.Context, merchantID, productID string, lastN int) (*dto.ProductEventSummary, error) {
	summary := &dto.ProductEventSummary{ProductID: productID}

	query := `SELECT * FROM inventory_events WHERE merchant_id = $1 AND product_id = $2 ORDER BY created_at DESC LIMIT $3`
	if err := r.DB.SelectContext(ctx, &summary.RecentEvents, query, merchantID, productID, lastN); err != nil {
		return nil, err
	}

	statsQuery := `
        SELECT event_type, count(*) AS count, COALESCE(SUM(quantity_delta), 0) AS net_change
        FROM inventory_events
        WHERE merchant_id = $1 AND product_id = $2
        GROUP BY event_type
        ORDER BY event_type
    `
	if err := r.DB.SelectContext(ctx, &summary.Totals, statsQuery, merchantID, productID); err != nil {
		return nil, err
	}

	balanceQuery := `
        SELECT COALESCE(SUM(quantity), 0) FROM stock_levels
        WHERE merchant_id = $1 AND product_id = $2
    `
	if err := r.DB.GetContext(ctx, &summary.CurrentBalance, balanceQuery, merchantID, productID); err != nil {
		return nil, err
	}

	return summary, nil
}

func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM inventory_events WHERE merchant_id = $1 AND id = $2`, merchantID, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NotFound("inventory event %s not found", id)
	}
	return nil
}
