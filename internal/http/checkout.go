package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"careerdesk/internal/domain"
)

// tokenField is the form field and header the gateway posts callback tokens in.
const tokenField = "x-gl-token"

func (h *Handler) checkout(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	result, err := h.orders.Checkout(c.Request.Context(), user.ID, req.lines())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CheckoutResponse{
		Purchase:    purchaseToResponse(*result.Purchase),
		RedirectURL: result.RedirectURL,
	})
}

func (h *Handler) listMyPurchases(c *gin.Context) {
	purchases, err := h.orders.ListMine(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]PurchaseResponse, len(purchases))
	for i := range purchases {
		resp[i] = purchaseToResponse(purchases[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getMyPurchase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.orders.GetMine(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseToResponse(*purchase))
}

func (h *Handler) paymentStatus(c *gin.Context) {
	payment, err := h.payments.StatusForUser(c.Request.Context(), currentUser(c), c.Param("txn"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentToResponse(*payment))
}

// paymentCallback accepts the gateway's browser redirect (form post) and its
// server-to-server notification (JSON or header token).
func (h *Handler) paymentCallback(c *gin.Context) {
	token, fromBrowser := callbackToken(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing payment token"})
		return
	}

	payment, err := h.payments.HandleCallback(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if h.reconciler != nil {
		// The callback answered; a background poll for this payment is moot.
		if err := h.reconciler.Cancel(c.Request.Context(), payment.ID); err != nil {
			h.logger.WithError(err).WithField("payment_id", payment.ID).Warn("cancel payment refresh")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"merchant_txn_id": payment.MerchantTxnID,
		"status":          payment.Status,
	}).Info("payment callback processed")

	if fromBrowser && h.frontendURL != "" {
		c.Redirect(http.StatusSeeOther, h.resultURL(payment))
		return
	}
	c.JSON(http.StatusOK, paymentToResponse(*payment))
}

func callbackToken(c *gin.Context) (string, bool) {
	contentType := c.ContentType()
	if contentType == "application/x-www-form-urlencoded" || contentType == "multipart/form-data" {
		if token := strings.TrimSpace(c.PostForm(tokenField)); token != "" {
			return token, true
		}
	}
	if contentType == "application/json" {
		var body struct {
			Token string `json:"token"`
		}
		if err := c.ShouldBindJSON(&body); err == nil && strings.TrimSpace(body.Token) != "" {
			return strings.TrimSpace(body.Token), false
		}
	}
	return strings.TrimSpace(c.GetHeader(tokenField)), false
}

func (h *Handler) resultURL(payment *domain.Payment) string {
	q := url.Values{}
	q.Set("txn", payment.MerchantTxnID)
	q.Set("status", string(payment.Status))
	return h.frontendURL + "/payment/result?" + q.Encode()
}
