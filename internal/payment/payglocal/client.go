package payglocal

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	initiatePath   = "/gl/v1/payments/initiate/paycollect"
	statusPathFmt  = "/gl/v1/payments/%s/status"
	refundPathFmt  = "/gl/v1/payments/%s/refund"
	tokenHeader    = "x-gl-token-external"
	defaultTimeout = 30 * time.Second
	defaultTTL     = 5 * time.Minute
	maxTxnIDLength = 35
)

// Gateway status values as reported by the status and refund endpoints.
const (
	StatusInProgress     = "INPROGRESS"
	StatusSentForCapture = "SENT_FOR_CAPTURE"
	StatusAuthorized     = "AUTHORIZED"
	StatusRequestError   = "REQUEST_ERROR"
	StatusDeclined       = "DECLINED"
	StatusAbandoned      = "ABANDONED"
	StatusSentForRefund  = "SENT_FOR_REFUND"
	StatusRefunded       = "REFUNDED"
	StatusRefundFailed   = "REFUND_FAILED"
)

var ErrMissingKeys = errors.New("payglocal: gateway public key and merchant private key are required")

type Config struct {
	BaseURL            string
	MerchantID         string
	PublicKeyID        string
	PrivateKeyID       string
	GatewayPublicKey   *rsa.PublicKey
	MerchantPrivateKey *rsa.PrivateKey
	HTTPClient         *http.Client
	Logger             *logrus.Logger
	Timeout            time.Duration
	// TokenTTL is advertised to the gateway as the token lifetime.
	TokenTTL time.Duration
}

// Client talks to the PayGlocal merchant API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger
	now    func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.GatewayPublicKey == nil || cfg.MerchantPrivateKey == nil {
		return nil, ErrMissingKeys
	}
	if cfg.BaseURL == "" || cfg.MerchantID == "" {
		return nil, errors.New("payglocal: base url and merchant id are required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTTL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger, now: time.Now}, nil
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

type InitiateRequest struct {
	MerchantTxnID string
	// Amount is a decimal string such as "1999.00".
	Amount      string
	Currency    string
	CallbackURL string
	Customer    Customer
}

type InitiateResponse struct {
	GatewayID   string
	RedirectURL string
	StatusURL   string
	Status      string
}

type StatusResponse struct {
	GatewayID     string
	MerchantTxnID string
	Status        string
	Amount        string
	Currency      string
}

type RefundRequest struct {
	MerchantTxnID string
	Full          bool
	Amount        string
	Currency      string
}

type RefundResponse struct {
	GatewayID string
	RefundID  string
	Status    string
}

type paymentData struct {
	TotalAmount string       `json:"totalAmount"`
	TxnCurrency string       `json:"txnCurrency"`
	BillingData *billingData `json:"billingData,omitempty"`
}

type billingData struct {
	FullName    string `json:"fullName,omitempty"`
	EmailID     string `json:"emailId,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type initiatePayload struct {
	MerchantTxnID       string      `json:"merchantTxnId"`
	MerchantUniqueID    string      `json:"merchantUniqueId"`
	PaymentData         paymentData `json:"paymentData"`
	MerchantCallbackURL string      `json:"merchantCallbackURL"`
}

type refundPayload struct {
	MerchantTxnID string       `json:"merchantTxnId"`
	RefundType    string       `json:"refundType"`
	PaymentData   *paymentData `json:"paymentData,omitempty"`
}

type gatewayResponse struct {
	GID     string `json:"gid"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		RedirectURL   string `json:"redirectUrl"`
		StatusURL     string `json:"statusUrl"`
		MerchantTxnID string `json:"merchantTxnId"`
		Amount        string `json:"Amount"`
		Currency      string `json:"Currency"`
		Status        string `json:"status"`
		RefundID      string `json:"refundId"`
	} `json:"data"`
	Errors *struct {
		Code            string `json:"code"`
		DetailedMessage string `json:"detailedMessage"`
		DisplayMessage  string `json:"displayMessage"`
	} `json:"errors"`
}

// Initiate opens a hosted payment session and returns where to send the shopper.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	payload := initiatePayload{
		MerchantTxnID:    req.MerchantTxnID,
		MerchantUniqueID: req.MerchantTxnID,
		PaymentData: paymentData{
			TotalAmount: req.Amount,
			TxnCurrency: req.Currency,
			BillingData: &billingData{
				FullName:    req.Customer.Name,
				EmailID:     req.Customer.Email,
				PhoneNumber: req.Customer.Phone,
			},
		},
		MerchantCallbackURL: req.CallbackURL,
	}

	resp, err := c.postEncrypted(ctx, initiatePath, payload)
	if err != nil {
		return nil, err
	}
	if resp.Data.RedirectURL == "" {
		return nil, &Error{Code: resp.errorCode(), Message: "initiate response without redirect url", HTTPStatus: http.StatusOK}
	}

	c.logger.WithFields(logrus.Fields{
		"merchant_txn_id": req.MerchantTxnID,
		"gid":             resp.GID,
	}).Info("payment session initiated")

	return &InitiateResponse{
		GatewayID:   resp.GID,
		RedirectURL: resp.Data.RedirectURL,
		StatusURL:   resp.Data.StatusURL,
		Status:      resp.Status,
	}, nil
}

// Status asks the gateway for the current state of a transaction.
func (c *Client) Status(ctx context.Context, gid string) (*StatusResponse, error) {
	if gid == "" {
		return nil, &Error{Code: CodeTxnNotFound, Message: "missing gateway id"}
	}
	path := fmt.Sprintf(statusPathFmt, url.PathEscape(gid))
	signature, err := c.sign([]byte(path), false)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	httpReq.Header.Set(tokenHeader, signature)

	resp, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	status := resp.Data.Status
	if status == "" {
		status = resp.Status
	}
	return &StatusResponse{
		GatewayID:     firstNonEmpty(resp.GID, gid),
		MerchantTxnID: resp.Data.MerchantTxnID,
		Status:        status,
		Amount:        resp.Data.Amount,
		Currency:      resp.Data.Currency,
	}, nil
}

// Refund requests a full or partial refund of a captured transaction.
func (c *Client) Refund(ctx context.Context, gid string, req RefundRequest) (*RefundResponse, error) {
	if gid == "" {
		return nil, &Error{Code: CodeTxnNotFound, Message: "missing gateway id"}
	}
	payload := refundPayload{MerchantTxnID: req.MerchantTxnID, RefundType: "F"}
	if !req.Full {
		payload.RefundType = "P"
		payload.PaymentData = &paymentData{TotalAmount: req.Amount, TxnCurrency: req.Currency}
	}

	resp, err := c.postEncrypted(ctx, fmt.Sprintf(refundPathFmt, url.PathEscape(gid)), payload)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"merchant_txn_id": req.MerchantTxnID,
		"gid":             gid,
		"refund_type":     payload.RefundType,
	}).Info("refund requested")

	return &RefundResponse{
		GatewayID: firstNonEmpty(resp.GID, gid),
		RefundID:  resp.Data.RefundID,
		Status:    resp.Status,
	}, nil
}

// GenerateMerchantTxnID returns a fresh id within the gateway's length limit.
func GenerateMerchantTxnID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	id = "CD" + id
	if len(id) > maxTxnIDLength {
		id = id[:maxTxnIDLength]
	}
	return id
}

func (c *Client) postEncrypted(ctx context.Context, path string, payload any) (*gatewayResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	body, err := c.encrypt(raw)
	if err != nil {
		return nil, err
	}
	signature, err := c.sign([]byte(body), true)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/plain")
	httpReq.Header.Set(tokenHeader, signature)

	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (*gatewayResponse, error) {
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", req.URL.Path).Warn("gateway request failed")
		return nil, &Error{Code: CodeServiceUnavailable, Message: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, &Error{Code: CodeServiceUnavailable, Message: fmt.Sprintf("read response: %v", err), HTTPStatus: res.StatusCode}
	}

	var parsed gatewayResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, &Error{Message: fmt.Sprintf("decode response: %v", err), HTTPStatus: res.StatusCode}
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 || parsed.Errors != nil {
		gwErr := &Error{Code: parsed.errorCode(), HTTPStatus: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		if parsed.Errors != nil && parsed.Errors.DetailedMessage != "" {
			gwErr.Message = parsed.Errors.DetailedMessage
		}
		if gwErr.Code == "" && res.StatusCode >= 500 {
			gwErr.Code = CodeServiceUnavailable
		}
		c.logger.WithFields(logrus.Fields{
			"path":   req.URL.Path,
			"status": res.StatusCode,
			"code":   gwErr.Code,
		}).Warn("gateway returned error")
		return nil, gwErr
	}
	return &parsed, nil
}

func (r *gatewayResponse) errorCode() string {
	if r.Errors == nil {
		return ""
	}
	return r.Errors.Code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
