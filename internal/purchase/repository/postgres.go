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
	"github.com/fekuna/omnipos-inventory-service/internal/purchase/dto"
	stockrepo "github.com/fekuna/omnipos-inventory-service/internal/stock/repository"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const insertItemQuery = `
    INSERT INTO purchase_order_items (
        id, merchant_id, order_id, product_id, quantity,
        unit_cost, total_cost, received_qty, created_at, updated_at
    )
    VALUES (
        :id, :merchant_id, :order_id, :product_id, :quantity,
        :unit_cost, :total_cost, :received_qty, :created_at, :updated_at
    )
`

// recalculateTotal keeps total_amount equal to the sum of item totals. Every
// item mutation runs it inside the same transaction.
func recalculateTotal(ctx context.Context, q postgres.Queryer, merchantID, orderID string) error {
	_, err := q.ExecContext(ctx, `
        UPDATE purchase_orders
        SET total_amount = COALESCE((
                SELECT SUM(total_cost) FROM purchase_order_items WHERE order_id = purchase_orders.id
            ), 0),
            updated_at = NOW()
        WHERE merchant_id = $1 AND id = $2`,
		merchantID, orderID,
	)
	return err
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateWithItems(ctx context.Context, po *model.PurchaseOrder, items []model.PurchaseOrderItem) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO purchase_orders (
                id, merchant_id, order_no, supplier_name, status, total_amount,
                notes, ordered_by, created_at, updated_at
            )
            VALUES (
                :id, :merchant_id, :order_no, :supplier_name, :status, :total_amount,
                :notes, :ordered_by, :created_at, :updated_at
            )
        `
		if _, err := tx.NamedExecContext(ctx, query, po); err != nil {
			return err
		}

		for i := range items {
			if _, err := tx.NamedExecContext(ctx, insertItemQuery, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	query := `SELECT * FROM purchase_orders WHERE merchant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &po, query, merchantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.FindItemsByOrder(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return &po, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	var orders []model.PurchaseOrder
	var count int

	conditions := []string{"merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM purchase_orders" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM purchase_orders" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &orders, args)
	return orders, count, err
}

func (r *PGRepository) FindItemByID(ctx context.Context, merchantID, itemID string) (*model.PurchaseOrderItem, error) {
	var item model.PurchaseOrderItem
	query := `SELECT * FROM purchase_order_items WHERE merchant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &item, query, merchantID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindItemsByOrder(ctx context.Context, merchantID, orderID string) ([]model.PurchaseOrderItem, error) {
	var items []model.PurchaseOrderItem
	query := `SELECT * FROM purchase_order_items WHERE merchant_id = $1 AND order_id = $2 ORDER BY created_at`
	err := r.DB.SelectContext(ctx, &items, query, merchantID, orderID)
	return items, err
}

func (r *PGRepository) AddItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertItemQuery, item); err != nil {
			return err
		}
		return recalculateTotal(ctx, tx, item.MerchantID, item.OrderID)
	})
}

func (r *PGRepository) UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query := `
            UPDATE purchase_order_items
            SET quantity = :quantity, unit_cost = :unit_cost, total_cost = :total_cost, updated_at = :updated_at
            WHERE merchant_id = :merchant_id AND id = :id
        `
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return err
		}
		return recalculateTotal(ctx, tx, item.MerchantID, item.OrderID)
	})
}

func (r *PGRepository) RemoveItem(ctx context.Context, merchantID, orderID, itemID string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM purchase_order_items WHERE merchant_id = $1 AND id = $2`,
			merchantID, itemID,
		); err != nil {
			return err
		}
		return recalculateTotal(ctx, tx, merchantID, orderID)
	})
}

func (r *PGRepository) RecalculateTotal(ctx context.Context, merchantID, orderID string) error {
	return recalculateTotal(ctx, r.DB, merchantID, orderID)
}

func (r *PGRepository) ReceiveItem(ctx context.Context, item *model.PurchaseOrderItem, quantity int64, locationID string, event *model.InventoryEvent, receivedBy string) (*model.PurchaseOrder, error) {
	var po *model.PurchaseOrder
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		// Lock the order row and re-check its status inside the
		// transaction. A cancel racing the caller's pre-check must not
		// credit stock against a CANCELLED order.
		var status model.OrderStatus
		err := sqlx.GetContext(ctx, tx, &status, `
            SELECT status FROM purchase_orders
            WHERE merchant_id = $1 AND id = $2
            FOR UPDATE`,
			item.MerchantID, item.OrderID,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NotFound("purchase order %s not found", item.OrderID)
			}
			return err
		}
		if status != model.OrderOrdered && status != model.OrderPartial {
			return apperrors.InvalidState(
				"purchase order %s is %s and cannot receive stock", item.OrderID, status)
		}

		// Guarded increment: receiving past the ordered quantity affects
		// zero rows and leaves everything unchanged.
		var updated model.PurchaseOrderItem
		err = sqlx.GetContext(ctx, tx, &updated, `
            UPDATE purchase_order_items
            SET received_qty = received_qty + $1, updated_at = NOW()
            WHERE merchant_id = $2 AND id = $3 AND received_qty + $1 <= quantity
            RETURNING *`,
			quantity, item.MerchantID, item.ID,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.InvalidState(
					"RECEIVING_EXCEEDS_ORDERED: item %s has %d of %d received",
					item.ID, item.ReceivedQty, item.Quantity)
			}
			return err
		}

		if _, err := stockrepo.ApplyDelta(ctx, tx, item.MerchantID, item.ProductID, locationID, quantity); err != nil {
			return err
		}

		total, err := stockrepo.GetTotalQuantity(ctx, tx, item.MerchantID, item.ProductID)
		if err != nil {
			return err
		}
		event.RunningBalance = total
		if err := eventrepo.Insert(ctx, tx, event); err != nil {
			return err
		}

		if err := updateOrderStatusFromItems(ctx, tx, item.MerchantID, item.OrderID, receivedBy); err != nil {
			return err
		}

		var order model.PurchaseOrder
		if err := sqlx.GetContext(ctx, tx, &order,
			`SELECT * FROM purchase_orders WHERE merchant_id = $1 AND id = $2`,
			item.MerchantID, item.OrderID,
		); err != nil {
			return err
		}
		po = &order
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := r.FindItemsByOrder(ctx, item.MerchantID, item.OrderID)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return po, nil
}

// updateOrderStatusFromItems derives the order status from the received
// counters: fully received closes the order, anything in between is PARTIAL.
func updateOrderStatusFromItems(ctx context.Context, q postgres.Queryer, merchantID, orderID, receivedBy string) error {
	var sums struct {
		Ordered  int64 `db:"ordered"`
		Received int64 `db:"received"`
	}
	err := sqlx.GetContext(ctx, q, &sums, `
        SELECT COALESCE(SUM(quantity), 0) AS ordered, COALESCE(SUM(received_qty), 0) AS received
        FROM purchase_order_items
        WHERE merchant_id = $1 AND order_id = $2`,
		merchantID, orderID,
	)
	if err != nil {
		return err
	}

	switch {
	case sums.Ordered > 0 && sums.Received == sums.Ordered:
		_, err = q.ExecContext(ctx, `
            UPDATE purchase_orders
            SET status = $1, received_by = NULLIF($2, '')::uuid, received_at = $3, updated_at = NOW()
            WHERE merchant_id = $4 AND id = $5 AND status IN ('ORDERED', 'PARTIAL')`,
			model.OrderReceived, receivedBy, time.Now(), merchantID, orderID,
		)
	case sums.Received > 0:
		_, err = q.ExecContext(ctx, `
            UPDATE purchase_orders SET status = $1, updated_at = NOW()
            WHERE merchant_id = $2 AND id = $3 AND status IN ('ORDERED', 'PARTIAL')`,
			model.OrderPartial, merchantID, orderID,
		)
	}
	return err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, merchantID, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query, args, err := sqlx.In(`
        UPDATE purchase_orders SET status = ?, updated_at = NOW()
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

func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM purchase_orders WHERE merchant_id = $1 AND id = $2 AND status = 'DRAFT'`,
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
