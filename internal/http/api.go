package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"careerdesk/internal/auth"
	"careerdesk/internal/domain"
	"careerdesk/internal/payment/payglocal"
	"careerdesk/internal/reconciler"
	"careerdesk/internal/reports"
	"careerdesk/internal/service"
	"careerdesk/internal/storage"
)

// DashboardSource supplies the admin dashboard aggregates.
type DashboardSource interface {
	Dashboard(ctx context.Context) (*reports.Dashboard, error)
}

type Services struct {
	Users     service.UserService
	Blogs     service.BlogService
	Packages  service.PackageService
	Inquiries service.InquiryService
	Orders    service.OrderService
	Payments  service.PaymentService
}

type Options struct {
	Issuer *auth.Issuer
	// Storage and Reconciler are optional.
	Storage        storage.Service
	Reconciler     reconciler.Reconciler
	Reports        DashboardSource
	URLExpiry      time.Duration
	AllowedOrigins []string
	// FrontendURL receives the shopper after the gateway's browser callback.
	FrontendURL string
	Logger      *logrus.Logger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	blogs     service.BlogService
	packages  service.PackageService
	inquiries service.InquiryService
	orders    service.OrderService
	payments  service.PaymentService

	issuer         *auth.Issuer
	storage        storage.Service
	reconciler     reconciler.Reconciler
	reports        DashboardSource
	urlExpiry      time.Duration
	allowedOrigins []string
	frontendURL    string
	logger         *logrus.Logger
}

func NewHandler(svc Services, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:          svc.Users,
		blogs:          svc.Blogs,
		packages:       svc.Packages,
		inquiries:      svc.Inquiries,
		orders:         svc.Orders,
		payments:       svc.Payments,
		issuer:         opts.Issuer,
		storage:        opts.Storage,
		reconciler:     opts.Reconciler,
		reports:        opts.Reports,
		urlExpiry:      opts.URLExpiry,
		allowedOrigins: opts.AllowedOrigins,
		frontendURL:    strings.TrimRight(opts.FrontendURL, "/"),
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.corsMiddleware())

	requireUser := auth.RequireUser(h.issuer, h.users.GetByID)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/me", requireUser, h.me)

		api.GET("/packages", h.listPackages)
		api.GET("/packages/:slug", h.getPackage)
		api.GET("/blogs", h.listBlogs)
		api.GET("/blogs/:slug", h.getBlog)
		api.POST("/messages", h.submitMessage)
		api.POST("/topic-suggestions", h.submitTopic)
		api.POST("/cart/quote", h.quoteCart)
		api.POST("/payments/callback", h.paymentCallback)
	}

	member := api.Group("", requireUser)
	{
		member.POST("/checkout", h.checkout)
		member.GET("/purchases", h.listMyPurchases)
		member.GET("/purchases/:id", h.getMyPurchase)
		member.GET("/payments/:txn/status", h.paymentStatus)
	}

	admin := api.Group("/admin", requireUser, auth.RequireAdmin())
	{
		admin.GET("/dashboard", h.dashboard)

		admin.GET("/blogs", h.adminListBlogs)
		admin.POST("/blogs", h.adminCreateBlog)
		admin.GET("/blogs/:id", h.adminGetBlog)
		admin.PUT("/blogs/:id", h.adminUpdateBlog)
		admin.DELETE("/blogs/:id", h.adminDeleteBlog)
		admin.POST("/blogs/:id/cover", h.adminUploadCover)

		admin.GET("/packages", h.adminListPackages)
		admin.POST("/packages", h.adminCreatePackage)
		admin.GET("/packages/:id", h.adminGetPackage)
		admin.PUT("/packages/:id", h.adminUpdatePackage)
		admin.DELETE("/packages/:id", h.adminDeletePackage)
		admin.POST("/packages/:id/brochure", h.adminUploadBrochure)

		admin.GET("/users", h.adminListUsers)
		admin.GET("/users/:id", h.adminGetUser)
		admin.PUT("/users/:id/role", h.adminUpdateRole)
		admin.DELETE("/users/:id", h.adminDeleteUser)

		admin.GET("/purchases", h.adminListPurchases)
		admin.GET("/purchases/:id", h.adminGetPurchase)

		admin.GET("/payments", h.adminListPayments)
		admin.POST("/payments/reconcile", h.adminReconcile)
		admin.POST("/payments/:id/refresh", h.adminRefreshPayment)
		admin.POST("/payments/:id/refund", h.adminRefundPayment)

		admin.GET("/messages", h.adminListMessages)
		admin.PUT("/messages/:id/status", h.adminUpdateMessageStatus)
		admin.DELETE("/messages/:id", h.adminDeleteMessage)

		admin.GET("/topic-suggestions", h.adminListTopics)
		admin.DELETE("/topic-suggestions/:id", h.adminDeleteTopic)

		admin.GET("/storage/objects", h.adminListObjects)
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(h.allowedOrigins) == 0 || (len(h.allowedOrigins) == 1 && h.allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.allowedOrigins
	}
	return cors.New(cfg)
}

// writeError maps service errors onto status codes in one place.
func (h *Handler) writeError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "details": validation.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	case errors.Is(err, service.ErrUserHasPurchases):
		c.JSON(http.StatusConflict, gin.H{"error": "user has purchases"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, service.ErrPaymentsDisabled), errors.Is(err, service.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		if gwErr, ok := payglocal.AsError(err); ok {
			// HTTPStatus 0 means the error was raised locally, not by the gateway.
			if gwErr.HTTPStatus == 0 {
				switch gwErr.Code {
				case payglocal.CodeAuthenticationFailed:
					c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid payment token"})
					return
				case payglocal.CodeTxnNotFound:
					c.JSON(http.StatusBadRequest, gin.H{"error": gwErr.UserMessage(), "code": gwErr.Code})
					return
				}
			}
			h.logger.WithError(err).WithField("code", gwErr.Code).Warn("payment gateway error")
			c.JSON(http.StatusBadGateway, gin.H{"error": gwErr.UserMessage(), "code": gwErr.Code})
			return
		}
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// listQuery reads paging and filter parameters shared by list endpoints.
func listQuery(c *gin.Context) (domain.ListQuery, bool) {
	var q domain.ListQuery
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return q, false
		}
		*dst = v
	}
	if raw := c.Query("user_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return q, false
		}
		q.UserID = v
	}
	q.Search = strings.TrimSpace(c.Query("q"))
	q.Status = strings.TrimSpace(c.Query("status"))
	q.Category = strings.TrimSpace(c.Query("category"))
	return q.Normalize(), true
}

func currentUser(c *gin.Context) *domain.User {
	user, _ := auth.CurrentUser(c)
	return user
}
