package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careerdesk/internal/domain"
	"careerdesk/internal/service"
)

type cartLineRequest struct {
	PackageID int64 `json:"package_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type cartRequest struct {
	Items []cartLineRequest `json:"items"`
}

func (r cartRequest) lines() []service.CartLine {
	lines := make([]service.CartLine, len(r.Items))
	for i, item := range r.Items {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		lines[i] = service.CartLine{PackageID: item.PackageID, Quantity: qty}
	}
	return lines
}

type messageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type topicRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Topic   string `json:"topic"`
	Details string `json:"details"`
}

func (h *Handler) listPackages(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.packages.ListActive(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, pageToResponse(page, query, func(pkg domain.Package) PackageResponse {
		return h.packageToResponse(ctx, pkg, false)
	}))
}

func (h *Handler) getPackage(c *gin.Context) {
	pkg, err := h.packages.GetActive(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.packageToResponse(c.Request.Context(), *pkg, true))
}

func (h *Handler) listBlogs(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.blogs.ListPublished(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, pageToResponse(page, query, func(blog domain.Blog) BlogResponse {
		return h.blogToResponse(ctx, blog, false)
	}))
}

func (h *Handler) getBlog(c *gin.Context) {
	blog, err := h.blogs.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.blogToResponse(c.Request.Context(), *blog, true))
}

func (h *Handler) quoteCart(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quote, err := h.packages.Quote(c.Request.Context(), req.lines())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteToResponse(quote))
}

func (h *Handler) submitMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.inquiries.SubmitMessage(c.Request.Context(), service.MessageInput(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": msg.ID, "status": msg.Status})
}

func (h *Handler) submitTopic(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	topic, err := h.inquiries.SubmitTopic(c.Request.Context(), service.TopicInput(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": topic.ID})
}
