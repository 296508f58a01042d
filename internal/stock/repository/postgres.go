package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	eventrepo "github.com/fekuna/omnipos-inventory-service/internal/event/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperrors"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
)

const stockColumns = `id, merchant_id, product_id, location_id, quantity, reserved_quantity, reorder_point, version, updated_at`

// Get returns nil when no row exists: a StockLevel is created lazily on the
// first movement into a location.
func Get(ctx context.Context, q postgres.Queryer, merchantID, productID, locationID string) (*model.StockLevel, error) {
	var lvl model.StockLevel
	query := `SELECT ` + stockColumns + ` FROM stock_levels
        WHERE merchant_id = $1 AND product_id = $2 AND location_id = $3`
	err := sqlx.GetContext(ctx, q, &lvl, query, merchantID, productID, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "get stock level")
	}
	return &lvl, nil
}

func GetQuantity(ctx context.Context, q postgres.Queryer, merchantID, productID, locationID string) (int64, error) {
	lvl, err := Get(ctx, q, merchantID, productID, locationID)
	if err != nil {
		return 0, err
	}
	if lvl == nil {
		return 0, nil
	}
	return lvl.Quantity, nil
}

func GetTotalQuantity(ctx context.Context, q postgres.Queryer, merchantID, productID string) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_levels
        WHERE merchant_id = $1 AND product_id = $2`
	err := sqlx.GetContext(ctx, q, &total, query, merchantID, productID)
	return total, pkgerrors.Wrap(err, "get total quantity")
}

// ApplyDelta adds delta in one conditional statement, creating the row when
// absent. A negative delta uses a guarded UPDATE instead of the upsert so a
// missing or insufficient balance affects zero rows.
func ApplyDelta(ctx context.Context, q postgres.Queryer, merchantID, productID, locationID string, delta int64) (*model.StockLevel, error) {
	var lvl model.StockLevel

	if delta < 0 {
		query := `
            UPDATE stock_levels
            SET quantity = quantity + $4, version = version + 1, updated_at = NOW()
            WHERE merchant_id = $1 AND product_id = $2 AND location_id = $3
              AND quantity + $4 >= 0
            RETURNING ` + stockColumns
		err := sqlx.GetContext(ctx, q, &lvl, query, merchantID, productID, locationID, delta)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.InsufficientStock(
					"cannot remove %d units of product %s at location %s", -delta, productID, locationID)
			}
			return nil, pkgerrors.Wrap(err, "apply negative delta")
		}
		return &lvl, nil
	}

	query := `
        INSERT INTO stock_levels (` + stockColumns + `)
        VALUES ($1, $2, $3, $4, $5, 0, 0, 1, NOW())
        ON CONFLICT (merchant_id, product_id, location_id) DO UPDATE
        SET quantity = stock_levels.quantity + EXCLUDED.quantity,
            version = stock_levels.version + 1,
            updated_at = NOW()
        RETURNING ` + stockColumns
	err := sqlx.GetContext(ctx, q, &lvl, query, uuid.New().String(), merchantID, productID, locationID, delta)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "apply delta")
	}
	return &lvl, nil
}

// SetQuantity overwrites the balance with an absolute value in one statement.
func SetQuantity(ctx context.Context, q postgres.Queryer, merchantID, productID, locationID string, quantity int64) (*model.StockLevel, error) {
	var lvl model.StockLevel
	query := `
        INSERT INTO stock_levels (` + stockColumns + `)
        VALUES ($1, $2, $3, $4, $5, 0, 0, 1, NOW())
        ON CONFLICT (merchant_id, product_id, location_id) DO UPDATE
        SET quantity = EXCLUDED.quantity,
            version = stock_levels.version + 1,
            updated_at = NOW()
        RETURNING ` + stockColumns
	err := sqlx.GetContext(ctx, q, &lvl, query, uuid.New().String(), merchantID, productID, locationID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "set quantity")
	}
	return &lvl, nil
}

// AddQuantity is the version-conditioned increment. Zero affected rows is
// classified by a follow-up read; the caller never gets a silent retry.
func AddQuantity(ctx context.Context, q postgres.Queryer, merchantID, productID, locationID string, delta int64, expectedVersion *int64) (*model.StockLevel, error) {
	if expectedVersion == nil {
		return ApplyDelta(ctx, q, merchantID, productID, locationID, delta)
	}

	var lvl model.StockLevel
	query := `
        UPDATE stock_levels
        SET quantity = quantity + $4, version = version + 1, updated_at = NOW()
        WHERE merchant_id = $1 AND product_id = $2 AND location_id = $3
          AND version = $5 AND quantity + $4 >= 0
        RETURNING ` + stockColumns
	err := sqlx.GetContext(ctx, q, &lvl, query, merchantID, productID, locationID, delta, *expectedVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classifyFailedUpdate(ctx, q, merchantID, productID, locationID, -delta, *expectedVersion)
		}
		return nil, pkgerrors.Wrap(err, "add quantity")
	}
	return &lvl, nil
}

// Deduct decrements only when the version matches and the balance covers the
// requested quantity, in a single conditional statement.
func Deduct(ctx context.Context, q postgres.Queryer, merchantID, productID, locationID string, quantity, expectedVersion int64) (*model.StockLevel, error) {
	var lvl model.StockLevel
	query := `
        UPDATE stock_levels
        SET quantity = quantity - $4, version = version + 1, updated_at = NOW()
        WHERE merchant_id = $1 AND product_id = $2 AND location_id = $3
          AND version = $5 AND quantity >= $4
        RETURNING ` + stockColumns
	err := sqlx.GetContext(ctx, q, &lvl, query, merchantID, productID, locationID, quantity, expectedVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classifyFailedUpdate(ctx, q, merchantID, productID, locationID, quantity, expectedVersion)
		}
		return nil, pkgerrors.Wrap(err, "deduct stock")
	}
	return &lvl, nil
}

// classifyFailedUpdate distinguishes the reasons a conditional update can
// affect zero rows. The follow-up read is diagnostic only; the failed update
// has already aborted the surrounding work.
func classifyFailedUpdate(ctx context.Context, q postgres.Queryer, merchantID, productID, locationID string, needed, expectedVersion int64) error {
	lvl, err := Get(ctx, q, merchantID, productID, locationID)
	if err != nil {
		return err
	}
	if lvl == nil {
		return apperrors.NotFound("no stock of product %s at location %s", productID, locationID)
	}
	if lvl.Version != expectedVersion {
		return apperrors.Conflict("stock level version changed: expected %d, found %d", expectedVersion, lvl.Version)
	}
	return apperrors.InsufficientStock(
		"requested %d units of product %s at location %s, %d available", needed, productID, locationID, lvl.Quantity)
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Get(ctx context.Context, merchantID, productID, locationID string) (*model.StockLevel, error) {
	return Get(ctx, r.DB, merchantID, productID, locationID)
}

func (r *PGRepository) GetQuantity(ctx context.Context, merchantID, productID, locationID string) (int64, error) {
	return GetQuantity(ctx, r.DB, merchantID, productID, locationID)
}

func (r *PGRepository) GetTotalQuantity(ctx context.Context, merchantID, productID string) (int64, error) {
	return GetTotalQuantity(ctx, r.DB, merchantID, productID)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.StockFilters) ([]model.StockLevel, int, error) {
	var items []model.StockLevel
	var count int

	conditions := []string{"s.merchant_id = :merchant_id", "p.deleted_at IS NULL"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.ProductID != "" {
		conditions = append(conditions, "s.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		conditions = append(conditions, "s.location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.LowStock {
		conditions = append(conditions, "s.quantity - s.reserved_quantity <= s.reorder_point AND s.reorder_point > 0")
	}

	from := ` FROM stock_levels s JOIN products p ON p.id = s.product_id WHERE ` + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*)" + from
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT s.*" + from + " ORDER BY s.updated_at DESC"
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

// appendEvent fills the running balance from the post-mutation state inside
// the same transaction, then inserts the ledger row.
func appendEvent(ctx context.Context, tx *sqlx.Tx, ev *model.InventoryEvent) error {
	total, err := GetTotalQuantity(ctx, tx, ev.MerchantID, ev.ProductID)
	if err != nil {
		return err
	}
	ev.RunningBalance = total
	return eventrepo.Insert(ctx, tx, ev)
}

func (r *PGRepository) ApplyDeltaWithEvent(ctx context.Context, merchantID, productID, locationID string, delta int64, event *model.InventoryEvent) (*model.StockLevel, error) {
	var lvl *model.StockLevel
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var err error
		lvl, err = ApplyDelta(ctx, tx, merchantID, productID, locationID, delta)
		if err != nil {
			return err
		}
		if event != nil {
			return appendEvent(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lvl, nil
}

func (r *PGRepository) SetQuantityWithEvent(ctx context.Context, merchantID, productID, locationID string, quantity int64, event *model.InventoryEvent) (*model.StockLevel, error) {
	var lvl *model.StockLevel
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		prev, err := GetQuantity(ctx, tx, merchantID, productID, locationID)
		if err != nil {
			return err
		}
		lvl, err = SetQuantity(ctx, tx, merchantID, productID, locationID, quantity)
		if err != nil {
			return err
		}
		if event != nil {
			// The ledger records the signed movement, not the absolute
			// value. An overwrite that changes nothing appends no row.
			event.QuantityDelta = lvl.Quantity - prev
			if event.QuantityDelta != 0 {
				return appendEvent(ctx, tx, event)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lvl, nil
}

func (r *PGRepository) AddQuantityWithEvent(ctx context.Context, merchantID, productID, locationID string, delta int64, expectedVersion *int64, event *model.InventoryEvent) (*model.StockLevel, error) {
	var lvl *model.StockLevel
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var err error
		lvl, err = AddQuantity(ctx, tx, merchantID, productID, locationID, delta, expectedVersion)
		if err != nil {
			return err
		}
		if event != nil {
			return appendEvent(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lvl, nil
}

func (r *PGRepository) DeductWithEvent(ctx context.Context, merchantID, productID, locationID string, quantity, expectedVersion int64, event *model.InventoryEvent) (*model.StockLevel, error) {
	var lvl *model.StockLevel
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var err error
		lvl, err = Deduct(ctx, tx, merchantID, productID, locationID, quantity, expectedVersion)
		if err != nil {
			return err
		}
		if event != nil {
			return appendEvent(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lvl, nil
}

// TransferWithEvents commits both balance rows and both ledger appends
// together or not at all. A failed source debit rolls back the already
// applied destination credit, so a torn transfer is never observable.
func (r *PGRepository) TransferWithEvents(ctx context.Context, merchantID, productID, fromLocationID, toLocationID string, quantity int64, out, in *model.InventoryEvent) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := ApplyDelta(ctx, tx, merchantID, productID, toLocationID, quantity); err != nil {
			return err
		}
		if _, err := ApplyDelta(ctx, tx, merchantID, productID, fromLocationID, -quantity); err != nil {
			return err
		}

		// The transfer is net zero for the product, so both events carry the
		// same running balance.
		total, err := GetTotalQuantity(ctx, tx, merchantID, productID)
		if err != nil {
			return err
		}
		out.RunningBalance = total
		in.RunningBalance = total

		if err := eventrepo.Insert(ctx, tx, out); err != nil {
			return err
		}
		return eventrepo.Insert(ctx, tx, in)
	})
}
