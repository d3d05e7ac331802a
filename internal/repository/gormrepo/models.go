package gormrepo

import (
	"time"

	"careerdesk/internal/domain"
)

type userModel struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"size:120;not null"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Phone        string    `gorm:"size:32"`
	Role         string    `gorm:"size:16;not null;default:user;index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Phone:        m.Phone,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func userFromDomain(u *domain.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type blogModel struct {
	ID            int64      `gorm:"primaryKey"`
	Title         string     `gorm:"size:200;not null"`
	Slug          string     `gorm:"size:220;not null;uniqueIndex"`
	Excerpt       string     `gorm:"size:500"`
	Content       string     `gorm:"type:text;not null"`
	Category      string     `gorm:"size:80;index"`
	Tags          []string   `gorm:"serializer:json"`
	Author        string     `gorm:"size:120"`
	CoverImageKey string     `gorm:"size:512"`
	Published     bool       `gorm:"not null;default:false;index"`
	PublishedAt   *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

func (blogModel) TableName() string { return "blogs" }

func (m *blogModel) toDomain() *domain.Blog {
	return &domain.Blog{
		ID:            m.ID,
		Title:         m.Title,
		Slug:          m.Slug,
		Excerpt:       m.Excerpt,
		Content:       m.Content,
		Category:      m.Category,
		Tags:          m.Tags,
		Author:        m.Author,
		CoverImageKey: m.CoverImageKey,
		Published:     m.Published,
		PublishedAt:   m.PublishedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func blogFromDomain(b *domain.Blog) *blogModel {
	return &blogModel{
		ID:            b.ID,
		Title:         b.Title,
		Slug:          b.Slug,
		Excerpt:       b.Excerpt,
		Content:       b.Content,
		Category:      b.Category,
		Tags:          b.Tags,
		Author:        b.Author,
		CoverImageKey: b.CoverImageKey,
		Published:     b.Published,
		PublishedAt:   b.PublishedAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type packageModel struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:160;not null"`
	Slug        string    `gorm:"size:180;not null;uniqueIndex"`
	Category    string    `gorm:"size:80;index"`
	Summary     string    `gorm:"size:500"`
	Description string    `gorm:"type:text"`
	Features    []string  `gorm:"serializer:json"`
	PriceMinor  int64     `gorm:"not null"`
	Currency    string    `gorm:"size:3;not null"`
	Active      bool      `gorm:"not null;index"`
	SortOrder   int       `gorm:"not null;default:0"`
	BrochureKey string    `gorm:"size:512"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (packageModel) TableName() string { return "packages" }

func (m *packageModel) toDomain() *domain.Package {
	return &domain.Package{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Category:    m.Category,
		Summary:     m.Summary,
		Description: m.Description,
		Features:    m.Features,
		PriceMinor:  m.PriceMinor,
		Currency:    m.Currency,
		Active:      m.Active,
		SortOrder:   m.SortOrder,
		BrochureKey: m.BrochureKey,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func packageFromDomain(p *domain.Package) *packageModel {
	return &packageModel{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Category:    p.Category,
		Summary:     p.Summary,
		Description: p.Description,
		Features:    p.Features,
		PriceMinor:  p.PriceMinor,
		Currency:    p.Currency,
		Active:      p.Active,
		SortOrder:   p.SortOrder,
		BrochureKey: p.BrochureKey,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type messageModel struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"size:120;not null"`
	Email     string    `gorm:"size:255;not null"`
	Phone     string    `gorm:"size:32"`
	Subject   string    `gorm:"size:200"`
	Body      string    `gorm:"type:text;not null"`
	Status    string    `gorm:"size:16;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (messageModel) TableName() string { return "messages" }

func (m *messageModel) toDomain() *domain.Message {
	return &domain.Message{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Body:      m.Body,
		Status:    domain.MessageStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type topicSuggestionModel struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"size:120"`
	Email     string    `gorm:"size:255"`
	Topic     string    `gorm:"size:200;not null"`
	Details   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

func (topicSuggestionModel) TableName() string { return "topic_suggestions" }

func (m *topicSuggestionModel) toDomain() *domain.TopicSuggestion {
	return &domain.TopicSuggestion{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Topic:     m.Topic,
		Details:   m.Details,
		CreatedAt: m.CreatedAt,
	}
}

type purchaseModel struct {
	ID         int64               `gorm:"primaryKey"`
	UserID     int64               `gorm:"not null;index"`
	Status     string              `gorm:"size:16;not null;index"`
	TotalMinor int64               `gorm:"not null"`
	Currency   string              `gorm:"size:3;not null"`
	Items      []purchaseItemModel `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Payments   []paymentModel      `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time           `gorm:"not null"`
	UpdatedAt  time.Time           `gorm:"not null"`
}

func (purchaseModel) TableName() string { return "purchases" }

func (m *purchaseModel) toDomain() *domain.Purchase {
	p := &domain.Purchase{
		ID:         m.ID,
		UserID:     m.UserID,
		Status:     domain.PurchaseStatus(m.Status),
		TotalMinor: m.TotalMinor,
		Currency:   m.Currency,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Items:      make([]domain.PurchaseItem, len(m.Items)),
		Payments:   make([]domain.Payment, len(m.Payments)),
	}
	for i := range m.Items {
		p.Items[i] = m.Items[i].toDomain()
	}
	for i := range m.Payments {
		p.Payments[i] = *m.Payments[i].toDomain()
	}
	return p
}

func purchaseFromDomain(p *domain.Purchase) *purchaseModel {
	m := &purchaseModel{
		ID:         p.ID,
		UserID:     p.UserID,
		Status:     string(p.Status),
		TotalMinor: p.TotalMinor,
		Currency:   p.Currency,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Items:      make([]purchaseItemModel, len(p.Items)),
	}
	for i, item := range p.Items {
		m.Items[i] = purchaseItemModel{
			ID:             item.ID,
			PurchaseID:     item.PurchaseID,
			PackageID:      item.PackageID,
			PackageName:    item.PackageName,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
		}
	}
	return m
}

type purchaseItemModel struct {
	ID             int64  `gorm:"primaryKey"`
	PurchaseID     int64  `gorm:"not null;index"`
	PackageID      int64  `gorm:"not null;index"`
	PackageName    string `gorm:"size:160;not null"`
	UnitPriceMinor int64  `gorm:"not null"`
	Quantity       int    `gorm:"not null"`
}

func (purchaseItemModel) TableName() string { return "purchase_items" }

func (m *purchaseItemModel) toDomain() domain.PurchaseItem {
	return domain.PurchaseItem{
		ID:             m.ID,
		PurchaseID:     m.PurchaseID,
		PackageID:      m.PackageID,
		PackageName:    m.PackageName,
		UnitPriceMinor: m.UnitPriceMinor,
		Quantity:       m.Quantity,
	}
}

type paymentModel struct {
	ID            int64     `gorm:"primaryKey"`
	PurchaseID    int64     `gorm:"not null;index"`
	MerchantTxnID string    `gorm:"size:64;not null;uniqueIndex"`
	GatewayID     string    `gorm:"size:128;index"`
	Status        string    `gorm:"size:24;not null;index"`
	AmountMinor   int64     `gorm:"not null"`
	RefundedMinor int64     `gorm:"not null;default:0"`
	PendingMinor  int64     `gorm:"column:pending_refund_minor;not null;default:0"`
	Currency      string    `gorm:"size:3;not null"`
	RedirectURL   string    `gorm:"size:1024"`
	GatewayStatus string    `gorm:"size:64"`
	ErrorCode     string    `gorm:"size:64"`
	ErrorMessage  string    `gorm:"size:512"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null;index"`
}

func (paymentModel) TableName() string { return "payments" }

func (m *paymentModel) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:                 m.ID,
		PurchaseID:         m.PurchaseID,
		MerchantTxnID:      m.MerchantTxnID,
		GatewayID:          m.GatewayID,
		Status:             domain.PaymentStatus(m.Status),
		AmountMinor:        m.AmountMinor,
		RefundedMinor:      m.RefundedMinor,
		PendingRefundMinor: m.PendingMinor,
		Currency:           m.Currency,
		RedirectURL:        m.RedirectURL,
		GatewayStatus:      m.GatewayStatus,
		ErrorCode:          m.ErrorCode,
		ErrorMessage:       m.ErrorMessage,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func paymentFromDomain(p *domain.Payment) *paymentModel {
	return &paymentModel{
		ID:            p.ID,
		PurchaseID:    p.PurchaseID,
		MerchantTxnID: p.MerchantTxnID,
		GatewayID:     p.GatewayID,
		Status:        string(p.Status),
		AmountMinor:   p.AmountMinor,
		RefundedMinor: p.RefundedMinor,
		PendingMinor:  p.PendingRefundMinor,
		Currency:      p.Currency,
		RedirectURL:   p.RedirectURL,
		GatewayStatus: p.GatewayStatus,
		ErrorCode:     p.ErrorCode,
		ErrorMessage:  p.ErrorMessage,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
