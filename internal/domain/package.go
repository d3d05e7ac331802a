package domain

import "time"

// Package is a purchasable career-services offering.
type Package struct {
	ID          int64
	Name        string `validate:"required,max=160"`
	Slug        string `validate:"required,max=180"`
	Category    string `validate:"max=80"`
	Summary     string `validate:"max=500"`
	Description string
	Features    []string
	PriceMinor  int64  `validate:"gte=0,lte=10000000000"`
	Currency    string `validate:"required,len=3,uppercase"`
	Active      bool
	SortOrder   int
	BrochureKey string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Package) Validate() error {
	return validateStruct(p)
}
