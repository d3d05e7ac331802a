package domain

import "time"

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusPaid      PurchaseStatus = "paid"
	PurchaseStatusFailed    PurchaseStatus = "failed"
	PurchaseStatusRefunded  PurchaseStatus = "refunded"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Purchase is an order placed by a user for one or more packages.
type Purchase struct {
	ID         int64
	UserID     int64
	Status     PurchaseStatus
	TotalMinor int64
	Currency   string
	Items      []PurchaseItem
	Payments   []Payment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseItem snapshots a package and its price at checkout time.
type PurchaseItem struct {
	ID             int64
	PurchaseID     int64
	PackageID      int64
	PackageName    string
	UnitPriceMinor int64
	Quantity       int
}

// Subtotal returns unit price times quantity.
func (i PurchaseItem) Subtotal() int64 {
	return i.UnitPriceMinor * int64(i.Quantity)
}

// ItemsTotal sums the line subtotals.
func (p *Purchase) ItemsTotal() int64 {
	var total int64
	for _, item := range p.Items {
		total += item.Subtotal()
	}
	return total
}

// LatestPayment returns the most recently created payment, if any.
func (p *Purchase) LatestPayment() *Payment {
	var latest *Payment
	for i := range p.Payments {
		if latest == nil || p.Payments[i].ID > latest.ID {
			latest = &p.Payments[i]
		}
	}
	return latest
}
