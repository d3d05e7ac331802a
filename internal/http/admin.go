package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"careerdesk/internal/domain"
	"careerdesk/internal/reconciler"
	"careerdesk/internal/service"
)

const uploadField = "file"

type blogRequest struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Author    string   `json:"author"`
	Published bool     `json:"published"`
}

type packageRequest struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Price       string   `json:"price" binding:"required"`
	Currency    string   `json:"currency"`
	Active      *bool    `json:"active"`
	SortOrder   int      `json:"sort_order"`
}

func (r packageRequest) input() (service.PackageInput, error) {
	price, err := domain.ParseAmount(r.Price)
	if err != nil {
		return service.PackageInput{}, domain.Invalid(fmt.Sprintf("price: %v", err))
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return service.PackageInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Category:    r.Category,
		Summary:     r.Summary,
		Description: r.Description,
		Features:    r.Features,
		PriceMinor:  price,
		Currency:    r.Currency,
		Active:      active,
		SortOrder:   r.SortOrder,
	}, nil
}

type roleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

type messageStatusRequest struct {
	Status domain.MessageStatus `json:"status" binding:"required"`
}

type refundRequest struct {
	// Amount is a decimal string; empty refunds everything refundable.
	Amount string `json:"amount"`
}

func (h *Handler) dashboard(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reports are not configured"})
		return
	}
	d, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboardToResponse(d))
}

func (h *Handler) adminListBlogs(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.blogs.List(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, pageToResponse(page, query, func(blog domain.Blog) BlogResponse {
		return h.blogToResponse(ctx, blog, false)
	}))
}

func (h *Handler) adminGetBlog(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	blog, err := h.blogs.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.blogToResponse(c.Request.Context(), *blog, true))
}

func (h *Handler) adminCreateBlog(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	blog, err := h.blogs.Create(c.Request.Context(), service.BlogInput(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.blogToResponse(c.Request.Context(), *blog, true))
}

func (h *Handler) adminUpdateBlog(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	blog, err := h.blogs.Update(c.Request.Context(), id, service.BlogInput(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.blogToResponse(c.Request.Context(), *blog, true))
}

func (h *Handler) adminDeleteBlog(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.blogs.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminUploadCover(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.withUpload(c, func(up service.Upload) {
		blog, err := h.blogs.AttachCover(c.Request.Context(), id, up)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.blogToResponse(c.Request.Context(), *blog, true))
	})
}

func (h *Handler) adminListPackages(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.packages.List(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, pageToResponse(page, query, func(pkg domain.Package) PackageResponse {
		return h.packageToResponse(ctx, pkg, false)
	}))
}

func (h *Handler) adminGetPackage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pkg, err := h.packages.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.packageToResponse(c.Request.Context(), *pkg, true))
}

func (h *Handler) adminCreatePackage(c *gin.Context) {
	in, ok := h.bindPackage(c)
	if !ok {
		return
	}
	pkg, err := h.packages.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.packageToResponse(c.Request.Context(), *pkg, true))
}

func (h *Handler) adminUpdatePackage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in, ok := h.bindPackage(c)
	if !ok {
		return
	}
	pkg, err := h.packages.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.packageToResponse(c.Request.Context(), *pkg, true))
}

func (h *Handler) bindPackage(c *gin.Context) (service.PackageInput, bool) {
	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.PackageInput{}, false
	}
	in, err := req.input()
	if err != nil {
		h.writeError(c, err)
		return service.PackageInput{}, false
	}
	return in, true
}

func (h *Handler) adminDeletePackage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.packages.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminUploadBrochure(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.withUpload(c, func(up service.Upload) {
		pkg, err := h.packages.AttachBrochure(c.Request.Context(), id, up)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.packageToResponse(c.Request.Context(), *pkg, true))
	})
}

// withUpload opens the multipart file and closes it after fn returns.
func (h *Handler) withUpload(c *gin.Context, fn func(up service.Upload)) {
	if h.storage == nil {
		h.writeError(c, service.ErrStorageDisabled)
		return
	}
	header, err := c.FormFile(uploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field " + uploadField})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	fn(service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
}

func (h *Handler) adminListUsers(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.users.List(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page, query, userToResponse))
}

func (h *Handler) adminGetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) adminUpdateRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if id == currentUser(c).ID && req.Role != domain.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove your own admin role"})
		return
	}
	user, err := h.users.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if id == currentUser(c).ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminListPurchases(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.orders.List(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page, query, purchaseToResponse))
}

func (h *Handler) adminGetPurchase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseToResponse(*purchase))
}

func (h *Handler) adminListPayments(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.payments.List(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page, query, paymentToResponse))
}

func (h *Handler) adminRefreshPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// The reconciler keeps one refresh per payment in flight; without it the
	// refresh runs inline.
	if h.reconciler != nil {
		err := h.reconciler.Enqueue(c.Request.Context(), id)
		if err == nil {
			c.JSON(http.StatusAccepted, gin.H{"status": "scheduled", "payment_id": id})
			return
		}
		if !errors.Is(err, reconciler.ErrNotStarted) {
			h.writeError(c, err)
			return
		}
	}
	payment, err := h.payments.Refresh(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentToResponse(*payment))
}

func (h *Handler) adminRefundPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req refundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	var amount int64
	if strings.TrimSpace(req.Amount) != "" {
		v, err := domain.ParseAmount(req.Amount)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid refund amount"})
			return
		}
		amount = v
	}
	payment, err := h.payments.Refund(c.Request.Context(), id, amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentToResponse(*payment))
}

// adminReconcile schedules a refresh of every stale open payment.
func (h *Handler) adminReconcile(c *gin.Context) {
	if h.reconciler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment reconciler is not running"})
		return
	}
	if err := h.reconciler.Resume(c.Request.Context()); err != nil {
		if errors.Is(err, reconciler.ErrNotStarted) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

func (h *Handler) adminListMessages(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.inquiries.ListMessages(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page, query, messageToResponse))
}

func (h *Handler) adminUpdateMessageStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req messageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.inquiries.UpdateMessageStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageToResponse(*msg))
}

func (h *Handler) adminDeleteMessage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.inquiries.DeleteMessage(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminListTopics(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.inquiries.ListTopics(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page, query, topicToResponse))
}

func (h *Handler) adminDeleteTopic(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.inquiries.DeleteTopic(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminListObjects(c *gin.Context) {
	if h.storage == nil {
		h.writeError(c, service.ErrStorageDisabled)
		return
	}
	prefix := h.storage.Key(strings.Trim(c.Query("prefix"), "/"))
	objects, err := h.storage.ListObjects(c.Request.Context(), prefix)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}
