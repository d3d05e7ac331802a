package http

import (
	"context"
	"time"

	"careerdesk/internal/domain"
	"careerdesk/internal/reports"
	"careerdesk/internal/service"
	"careerdesk/internal/storage"
)

type UserResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type BlogResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Published   bool     `json:"published"`
	PublishedAt *string  `json:"published_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type PackageResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features"`
	PriceMinor  int64    `json:"price_minor"`
	Price       string   `json:"price"`
	Currency    string   `json:"currency"`
	Active      bool     `json:"active"`
	SortOrder   int      `json:"sort_order"`
	BrochureURL string   `json:"brochure_url,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type MessageResponse struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Phone     string               `json:"phone,omitempty"`
	Subject   string               `json:"subject"`
	Body      string               `json:"body"`
	Status    domain.MessageStatus `json:"status"`
	CreatedAt string               `json:"created_at"`
	UpdatedAt string               `json:"updated_at"`
}

type TopicResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Topic     string `json:"topic"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
}

type QuoteLineResponse struct {
	PackageID     int64  `json:"package_id"`
	PackageName   string `json:"package_name"`
	Slug          string `json:"slug"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	SubtotalMinor int64  `json:"subtotal_minor"`
	Subtotal      string `json:"subtotal"`
}

type QuoteResponse struct {
	Lines      []QuoteLineResponse `json:"lines"`
	TotalMinor int64               `json:"total_minor"`
	Total      string              `json:"total"`
	Currency   string              `json:"currency"`
}

type PaymentResponse struct {
	ID                 int64                `json:"id"`
	PurchaseID         int64                `json:"purchase_id"`
	MerchantTxnID      string               `json:"merchant_txn_id"`
	GatewayID          string               `json:"gateway_id,omitempty"`
	Status             domain.PaymentStatus `json:"status"`
	Amount             string               `json:"amount"`
	AmountMinor        int64                `json:"amount_minor"`
	RefundedMinor      int64                `json:"refunded_minor"`
	PendingRefundMinor int64                `json:"pending_refund_minor,omitempty"`
	Currency           string               `json:"currency"`
	GatewayStatus      string               `json:"gateway_status,omitempty"`
	ErrorCode          string               `json:"error_code,omitempty"`
	ErrorMessage       string               `json:"error_message,omitempty"`
	CreatedAt          string               `json:"created_at"`
	UpdatedAt          string               `json:"updated_at"`
}

type PurchaseItemResponse struct {
	PackageID   int64  `json:"package_id"`
	PackageName string `json:"package_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type PurchaseResponse struct {
	ID         int64                  `json:"id"`
	UserID     int64                  `json:"user_id"`
	Status     domain.PurchaseStatus  `json:"status"`
	Total      string                 `json:"total"`
	TotalMinor int64                  `json:"total_minor"`
	Currency   string                 `json:"currency"`
	Items      []PurchaseItemResponse `json:"items"`
	Payments   []PaymentResponse      `json:"payments"`
	CreatedAt  string                 `json:"created_at"`
	UpdatedAt  string                 `json:"updated_at"`
}

type CheckoutResponse struct {
	Purchase    PurchaseResponse `json:"purchase"`
	RedirectURL string           `json:"redirect_url"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

type DashboardResponse struct {
	Counts    CountsResponse           `json:"counts"`
	Revenue   []CurrencyTotalResponse  `json:"revenue"`
	ByPackage []PackageRevenueResponse `json:"by_package"`
}

type CountsResponse struct {
	Users            int64 `json:"users"`
	Blogs            int64 `json:"blogs"`
	PublishedBlogs   int64 `json:"published_blogs"`
	ActivePackages   int64 `json:"active_packages"`
	NewMessages      int64 `json:"new_messages"`
	TopicSuggestions int64 `json:"topic_suggestions"`
	PaidPurchases    int64 `json:"paid_purchases"`
	PendingPayments  int64 `json:"pending_payments"`
}

type CurrencyTotalResponse struct {
	Currency     string `json:"currency"`
	RevenueMinor int64  `json:"revenue_minor"`
	Revenue      string `json:"revenue"`
}

type PackageRevenueResponse struct {
	PackageID    int64  `json:"package_id"`
	PackageName  string `json:"package_name"`
	Currency     string `json:"currency"`
	Quantity     int64  `json:"quantity"`
	RevenueMinor int64  `json:"revenue_minor"`
	Revenue      string `json:"revenue"`
}

type PageResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func pageToResponse[S, T any](page domain.Page[S], query domain.ListQuery, convert func(S) T) PageResponse[T] {
	query = query.Normalize()
	resp := PageResponse[T]{
		Items:  make([]T, len(page.Items)),
		Total:  page.Total,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	for i := range page.Items {
		resp.Items[i] = convert(page.Items[i])
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

// objectURL presigns key when storage is configured; failures only drop the link.
func (h *Handler) objectURL(ctx context.Context, key string) string {
	if key == "" || h.storage == nil {
		return ""
	}
	url, err := h.storage.GetObjectURL(ctx, key, h.urlExpiry)
	if err != nil {
		h.logger.WithError(err).WithField("key", key).Warn("presign object url")
		return ""
	}
	return url
}

func (h *Handler) blogToResponse(ctx context.Context, blog domain.Blog, withContent bool) BlogResponse {
	resp := BlogResponse{
		ID:        blog.ID,
		Title:     blog.Title,
		Slug:      blog.Slug,
		Excerpt:   blog.Excerpt,
		Category:  blog.Category,
		Tags:      blog.Tags,
		Author:    blog.Author,
		CoverURL:  h.objectURL(ctx, blog.CoverImageKey),
		Published: blog.Published,
		CreatedAt: formatTime(blog.CreatedAt),
		UpdatedAt: formatTime(blog.UpdatedAt),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if withContent {
		resp.Content = blog.Content
	}
	if blog.PublishedAt != nil {
		v := formatTime(*blog.PublishedAt)
		resp.PublishedAt = &v
	}
	return resp
}

func (h *Handler) packageToResponse(ctx context.Context, pkg domain.Package, withDescription bool) PackageResponse {
	resp := PackageResponse{
		ID:          pkg.ID,
		Name:        pkg.Name,
		Slug:        pkg.Slug,
		Category:    pkg.Category,
		Summary:     pkg.Summary,
		Features:    pkg.Features,
		PriceMinor:  pkg.PriceMinor,
		Price:       domain.FormatAmount(pkg.PriceMinor),
		Currency:    pkg.Currency,
		Active:      pkg.Active,
		SortOrder:   pkg.SortOrder,
		BrochureURL: h.objectURL(ctx, pkg.BrochureKey),
		CreatedAt:   formatTime(pkg.CreatedAt),
		UpdatedAt:   formatTime(pkg.UpdatedAt),
	}
	if resp.Features == nil {
		resp.Features = []string{}
	}
	if withDescription {
		resp.Description = pkg.Description
	}
	return resp
}

func messageToResponse(msg domain.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Status:    msg.Status,
		CreatedAt: formatTime(msg.CreatedAt),
		UpdatedAt: formatTime(msg.UpdatedAt),
	}
}

func topicToResponse(topic domain.TopicSuggestion) TopicResponse {
	return TopicResponse{
		ID:        topic.ID,
		Name:      topic.Name,
		Email:     topic.Email,
		Topic:     topic.Topic,
		Details:   topic.Details,
		CreatedAt: formatTime(topic.CreatedAt),
	}
}

func quoteToResponse(quote *service.Quote) QuoteResponse {
	resp := QuoteResponse{
		Lines:      make([]QuoteLineResponse, len(quote.Lines)),
		TotalMinor: quote.TotalMinor,
		Total:      domain.FormatAmount(quote.TotalMinor),
		Currency:   quote.Currency,
	}
	for i, line := range quote.Lines {
		resp.Lines[i] = QuoteLineResponse{
			PackageID:     line.Package.ID,
			PackageName:   line.Package.Name,
			Slug:          line.Package.Slug,
			Quantity:      line.Quantity,
			UnitPrice:     domain.FormatAmount(line.Package.PriceMinor),
			SubtotalMinor: line.SubtotalMinor,
			Subtotal:      domain.FormatAmount(line.SubtotalMinor),
		}
	}
	return resp
}

func paymentToResponse(payment domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                 payment.ID,
		PurchaseID:         payment.PurchaseID,
		MerchantTxnID:      payment.MerchantTxnID,
		GatewayID:          payment.GatewayID,
		Status:             payment.Status,
		Amount:             domain.FormatAmount(payment.AmountMinor),
		AmountMinor:        payment.AmountMinor,
		RefundedMinor:      payment.RefundedMinor,
		PendingRefundMinor: payment.PendingRefundMinor,
		Currency:           payment.Currency,
		GatewayStatus:      payment.GatewayStatus,
		ErrorCode:          payment.ErrorCode,
		ErrorMessage:       payment.ErrorMessage,
		CreatedAt:          formatTime(payment.CreatedAt),
		UpdatedAt:          formatTime(payment.UpdatedAt),
	}
}

func purchaseToResponse(purchase domain.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:         purchase.ID,
		UserID:     purchase.UserID,
		Status:     purchase.Status,
		Total:      domain.FormatAmount(purchase.TotalMinor),
		TotalMinor: purchase.TotalMinor,
		Currency:   purchase.Currency,
		Items:      make([]PurchaseItemResponse, len(purchase.Items)),
		Payments:   make([]PaymentResponse, len(purchase.Payments)),
		CreatedAt:  formatTime(purchase.CreatedAt),
		UpdatedAt:  formatTime(purchase.UpdatedAt),
	}
	for i, item := range purchase.Items {
		resp.Items[i] = PurchaseItemResponse{
			PackageID:   item.PackageID,
			PackageName: item.PackageName,
			UnitPrice:   domain.FormatAmount(item.UnitPriceMinor),
			Quantity:    item.Quantity,
			Subtotal:    domain.FormatAmount(item.Subtotal()),
		}
	}
	for i, payment := range purchase.Payments {
		resp.Payments[i] = paymentToResponse(payment)
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func dashboardToResponse(d *reports.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Counts:    CountsResponse(d.Counts),
		Revenue:   make([]CurrencyTotalResponse, len(d.Revenue)),
		ByPackage: make([]PackageRevenueResponse, len(d.ByPackage)),
	}
	for i, r := range d.Revenue {
		resp.Revenue[i] = CurrencyTotalResponse{Currency: r.Currency, RevenueMinor: r.RevenueMinor, Revenue: domain.FormatAmount(r.RevenueMinor)}
	}
	for i, r := range d.ByPackage {
		resp.ByPackage[i] = PackageRevenueResponse{
			PackageID:    r.PackageID,
			PackageName:  r.PackageName,
			Currency:     r.Currency,
			Quantity:     r.Quantity,
			RevenueMinor: r.RevenueMinor,
			Revenue:      domain.FormatAmount(r.RevenueMinor),
		}
	}
	return resp
}
