package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	eventrepo "github.com/fekuna/omnipos-inventory-service/internal/event/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	stockrepo "github.com/fekuna/omnipos-inventory-service/internal/stock/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/transfer/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, t *model.StockTransfer) error {
	query := `
        INSERT INTO stock_transfers (
            id, merchant_id, product_id, from_location_id, to_location_id,
            quantity, status, notes, requested_by, created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :product_id, :from_location_id, :to_location_id,
            :quantity, :status, :notes, :requested_by, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.StockTransfer, error) {
	var t model.StockTransfer
	query := `SELECT * FROM stock_transfers WHERE merchant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &t, query, merchantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.TransferFilters) ([]model.StockTransfer, int, error) {
	var items []model.StockTransfer
	var count int

	conditions := []string{"t.merchant_id = :merchant_id", "p.deleted_at IS NULL"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.ProductID != "" {
		conditions = append(conditions, "t.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		conditions = append(conditions, "(t.from_location_id = :location_id OR t.to_location_id = :location_id)")
		args["location_id"] = f.LocationID
	}
	if f.Status != "" {
		conditions = append(conditions, "t.status = :status")
		args["status"] = f.Status
	}

	from := ` FROM stock_transfers t JOIN products p ON p.id = t.product_id WHERE ` + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*)" + from
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT t.*" + from + " ORDER BY t.created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, merchantID, id string, from []model.TransferStatus, to model.TransferStatus) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query, args, err := sqlx.In(`
        UPDATE stock_transfers SET status = ?, updated_at = NOW()
        WHERE merchant_id = ? AND id = ? AND status IN (?)`,
		string(to), merchantID, id, statuses,
	)
	if err != nil {
		return false, err
	}
	query = r.DB.Rebind(query)

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Complete flips the status, moves the stock and appends both ledger rows in
// one transaction. The status predicate excludes COMPLETED so a second
// completion affects zero rows and moves nothing.
func (r *PGRepository) Complete(ctx context.Context, t *model.StockTransfer, completedBy string, out, in *model.InventoryEvent) (bool, error) {
	moved := false
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE stock_transfers
            SET status = $1, completed_by = NULLIF($2, '')::uuid, completed_at = $3, updated_at = NOW()
            WHERE merchant_id = $4 AND id = $5 AND status NOT IN ('COMPLETED', 'CANCELLED')`,
			model.TransferCompleted, completedBy, time.Now(), t.MerchantID, t.ID,
		)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the race to a concurrent completion; nothing to do.
			return nil
		}

		if _, err := stockrepo.ApplyDelta(ctx, tx, t.MerchantID, t.ProductID, t.ToLocationID, t.Quantity); err != nil {
			return err
		}
		if _, err := stockrepo.ApplyDelta(ctx, tx, t.MerchantID, t.ProductID, t.FromLocationID, -t.Quantity); err != nil {
			return err
		}

		total, err := stockrepo.GetTotalQuantity(ctx, tx, t.MerchantID, t.ProductID)
		if err != nil {
			return err
		}
		out.RunningBalance = total
		in.RunningBalance = total

		if err := eventrepo.Insert(ctx, tx, out); err != nil {
			return err
		}
		if err := eventrepo.Insert(ctx, tx, in); err != nil {
			return err
		}

		moved = true
		return nil
	})
	return moved, err
}

func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM stock_transfers WHERE merchant_id = $1 AND id = $2 AND status = 'PENDING'`,
		merchantID, id,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
