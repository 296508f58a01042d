package dto

type UpsertStockInput struct {
	MerchantID    string
	ProductID     string
	LocationID    string
	Quantity      int64 // signed delta; creates the row on first movement
	Notes         string
	ReferenceType string
	ReferenceID   string
	UserID        string
}

type SetQuantityInput struct {
	MerchantID string
	ProductID  string
	LocationID string
	Quantity   int64
	Notes      string
	UserID     string
}

type AddQuantityInput struct {
	MerchantID      string
	ProductID       string
	LocationID      string
	Delta           int64
	ExpectedVersion *int64 // when set, the update predicate includes version = ExpectedVersion
	Notes           string
	UserID          string
}

type DeductStockInput struct {
	MerchantID      string
	ProductID       string
	LocationID      string
	Quantity        int64
	ExpectedVersion int64
	Notes           string
	ReferenceType   string // e.g. "sale"
	ReferenceID     string
	UserID          string
}

type AdjustStockInput struct {
	MerchantID  string
	ProductID   string
	LocationID  string
	NewQuantity int64
	Notes       string
	// Force allows adjusting below the reserved quantity.
	Force  bool
	UserID string
}

type TransferStockInput struct {
	MerchantID     string
	ProductID      string
	FromLocationID string
	ToLocationID   string
	Quantity       int64
	Notes          string
	ReferenceType  string
	ReferenceID    string
	UserID         string
}
