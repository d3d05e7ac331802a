package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
	"careerdesk/internal/storage"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 10
)

type PackageInput struct {
	Name        string
	Slug        string
	Category    string
	Summary     string
	Description string
	Features    []string
	PriceMinor  int64
	Currency    string
	Active      bool
	SortOrder   int
}

// CartLine is one entry of a client supplied cart.
type CartLine struct {
	PackageID int64
	Quantity  int
}

type QuoteLine struct {
	Package       domain.Package
	Quantity      int
	SubtotalMinor int64
}

// Quote prices a cart from the catalog; client prices are never trusted.
type Quote struct {
	Lines      []QuoteLine
	TotalMinor int64
	Currency   string
}

// PackageService manages the product catalog and prices carts.
type PackageService interface {
	ListActive(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Package], error)
	GetActive(ctx context.Context, slug string) (*domain.Package, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Package], error)
	Get(ctx context.Context, id int64) (*domain.Package, error)
	Create(ctx context.Context, in PackageInput) (*domain.Package, error)
	Update(ctx context.Context, id int64, in PackageInput) (*domain.Package, error)
	Delete(ctx context.Context, id int64) error
	AttachBrochure(ctx context.Context, id int64, up Upload) (*domain.Package, error)
	Quote(ctx context.Context, lines []CartLine) (*Quote, error)
}

type packageService struct {
	packages        repository.PackageRepository
	store           storage.Service
	defaultCurrency string
	logger          *logrus.Logger
}

// NewPackageService builds the catalog service. store may be nil when uploads are disabled.
func NewPackageService(packages repository.PackageRepository, store storage.Service, defaultCurrency string, logger *logrus.Logger) PackageService {
	defaultCurrency = strings.ToUpper(strings.TrimSpace(defaultCurrency))
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &packageService{
		packages:        packages,
		store:           store,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

func (s *packageService) ListActive(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Package], error) {
	return s.packages.List(ctx, query.Normalize(), true)
}

func (s *packageService) GetActive(ctx context.Context, slug string) (*domain.Package, error) {
	pkg, err := s.packages.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if !pkg.Active {
		return nil, domain.ErrNotFound
	}
	return pkg, nil
}

func (s *packageService) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Package], error) {
	return s.packages.List(ctx, query.Normalize(), false)
}

func (s *packageService) Get(ctx context.Context, id int64) (*domain.Package, error) {
	return s.packages.GetByID(ctx, id)
}

func (s *packageService) Create(ctx context.Context, in PackageInput) (*domain.Package, error) {
	pkg := &domain.Package{}
	if err := s.apply(ctx, pkg, in); err != nil {
		return nil, err
	}
	if err := s.packages.Create(ctx, pkg); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"package_id": pkg.ID, "slug": pkg.Slug}).Info("package created")
	return pkg, nil
}

func (s *packageService) Update(ctx context.Context, id int64, in PackageInput) (*domain.Package, error) {
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, pkg, in); err != nil {
		return nil, err
	}
	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Delete removes a package from the catalog. Purchases keep their own
// snapshot of name and price so history stays intact.
func (s *packageService) Delete(ctx context.Context, id int64) error {
	if _, err := s.packages.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.packages.Delete(ctx, id); err != nil {
		return err
	}
	removeRecordObjects(ctx, s.store, s.logger, "packages", id)
	s.logger.WithField("package_id", id).Info("package deleted")
	return nil
}

func (s *packageService) AttachBrochure(ctx context.Context, id int64, up Upload) (*domain.Package, error) {
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := storeUpload(ctx, s.store, "packages", id, "brochure", up, documentTypes)
	if err != nil {
		return nil, err
	}

	previous := pkg.BrochureKey
	pkg.BrochureKey = key
	if err := s.packages.Update(ctx, pkg); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, err
	}
	if previous != "" {
		if err := s.store.Delete(ctx, previous); err != nil {
			s.logger.WithError(err).WithField("key", previous).Warn("delete replaced brochure")
		}
	}
	return pkg, nil
}

func (s *packageService) Quote(ctx context.Context, lines []CartLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Duplicate lines for one package are merged before limits apply.
	quantities := make(map[int64]int, len(lines))
	order := make([]int64, 0, len(lines))
	var problems []string
	for _, line := range lines {
		if line.PackageID <= 0 {
			problems = append(problems, "package id is required")
			continue
		}
		if line.Quantity < MinLineQuantity || line.Quantity > MaxLineQuantity {
			problems = append(problems, fmt.Sprintf("quantity for package %d must be between %d and %d", line.PackageID, MinLineQuantity, MaxLineQuantity))
			continue
		}
		if _, seen := quantities[line.PackageID]; !seen {
			order = append(order, line.PackageID)
		}
		quantities[line.PackageID] += line.Quantity
	}
	for _, id := range order {
		if quantities[id] > MaxLineQuantity {
			problems = append(problems, fmt.Sprintf("quantity for package %d must be between %d and %d", id, MinLineQuantity, MaxLineQuantity))
		}
	}
	if len(problems) > 0 {
		return nil, domain.Invalid(problems...)
	}

	packages, err := s.packages.GetByIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Package, len(packages))
	for _, pkg := range packages {
		byID[pkg.ID] = pkg
	}

	quote := &Quote{Lines: make([]QuoteLine, 0, len(order))}
	for _, id := range order {
		pkg, ok := byID[id]
		if !ok || !pkg.Active {
			problems = append(problems, fmt.Sprintf("package %d is not available", id))
			continue
		}
		if quote.Currency == "" {
			quote.Currency = pkg.Currency
		} else if quote.Currency != pkg.Currency {
			problems = append(problems, "cart mixes currencies")
			continue
		}
		line := QuoteLine{Package: pkg, Quantity: quantities[id], SubtotalMinor: pkg.PriceMinor * int64(quantities[id])}
		quote.Lines = append(quote.Lines, line)
		quote.TotalMinor += line.SubtotalMinor
	}
	if len(problems) > 0 {
		return nil, domain.Invalid(problems...)
	}
	if quote.TotalMinor <= 0 {
		return nil, domain.Invalid("cart total must be greater than zero")
	}

	sort.SliceStable(quote.Lines, func(i, j int) bool {
		return quote.Lines[i].Package.SortOrder < quote.Lines[j].Package.SortOrder
	})
	return quote, nil
}

func (s *packageService) apply(ctx context.Context, pkg *domain.Package, in PackageInput) error {
	slugSource := in.Slug
	if strings.TrimSpace(slugSource) == "" && pkg.Slug != "" {
		slugSource = pkg.Slug
	}
	slug, err := uniqueSlug(ctx, slugSource, in.Name, pkg.ID, s.packages.SlugExists)
	if err != nil {
		return err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	pkg.Name = strings.TrimSpace(in.Name)
	pkg.Slug = slug
	pkg.Category = strings.TrimSpace(in.Category)
	pkg.Summary = strings.TrimSpace(in.Summary)
	pkg.Description = in.Description
	pkg.Features = cleanList(in.Features)
	pkg.PriceMinor = in.PriceMinor
	pkg.Currency = currency
	pkg.Active = in.Active
	pkg.SortOrder = in.SortOrder
	return pkg.Validate()
}
