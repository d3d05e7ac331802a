package payglocal

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

const (
	digestAlgorithm = "SHA-256"
	clockSkew       = time.Minute
)

// encrypt wraps the JSON payload in a compact JWE addressed to the gateway key.
func (c *Client) encrypt(payload []byte) (string, error) {
	opts := (&jose.EncrypterOptions{}).
		WithType("JWE").
		WithHeader(jose.HeaderKey("issued-by"), c.cfg.MerchantID).
		WithHeader(jose.HeaderKey("iat"), strconv.FormatInt(c.now().UnixMilli(), 10)).
		WithHeader(jose.HeaderKey("exp"), c.cfg.TokenTTL.Milliseconds())

	encrypter, err := jose.NewEncrypter(jose.A128CBC_HS256, jose.Recipient{
		Algorithm: jose.RSA_OAEP_256,
		Key:       c.cfg.GatewayPublicKey,
		KeyID:     c.cfg.PublicKeyID,
	}, opts)
	if err != nil {
		return "", fmt.Errorf("create encrypter: %w", err)
	}

	obj, err := encrypter.Encrypt(payload)
	if err != nil {
		return "", fmt.Errorf("encrypt payload: %w", err)
	}
	token, err := obj.CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwe: %w", err)
	}
	return token, nil
}

// sign produces the detached request signature: an RS256 JWS over the
// SHA-256 digest of whatever is sent (the JWE body, or the path for GETs).
func (c *Client) sign(content []byte, encrypted bool) (string, error) {
	sum := sha256.Sum256(content)
	claims := jwt.MapClaims{
		"digest":          base64.StdEncoding.EncodeToString(sum[:]),
		"digestAlgorithm": digestAlgorithm,
		"exp":             c.cfg.TokenTTL.Milliseconds(),
		"iat":             strconv.FormatInt(c.now().UnixMilli(), 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = c.cfg.PrivateKeyID
	token.Header["issued-by"] = c.cfg.MerchantID
	token.Header["x-gl-merchantId"] = c.cfg.MerchantID
	token.Header["is-digested"] = "true"
	token.Header["x-gl-enc"] = strconv.FormatBool(encrypted)

	signed, err := token.SignedString(c.cfg.MerchantPrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign request: %w", err)
	}
	return signed, nil
}

// CallbackPayload is what the gateway posts back once the shopper finishes.
type CallbackPayload struct {
	GatewayID     string
	MerchantTxnID string
	Status        string
	Amount        string
	Currency      string
}

// VerifyCallback checks the gateway signature and freshness of a callback
// token and returns its payload. The gateway's iat is a millisecond
// timestamp and exp a millisecond lifetime rather than RFC 7519 dates, so
// they are checked by checkIssued instead of the jwt validator.
func (c *Client) VerifyCallback(token string) (*CallbackPayload, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.cfg.GatewayPublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, &Error{Code: CodeAuthenticationFailed, Message: fmt.Sprintf("verify callback: %v", err)}
	}
	if err := c.checkIssued(claims); err != nil {
		return nil, &Error{Code: CodeAuthenticationFailed, Message: fmt.Sprintf("verify callback: %v", err)}
	}

	payload := &CallbackPayload{
		GatewayID:     claimString(claims, "gid"),
		MerchantTxnID: claimString(claims, "merchantTxnId", "merchantUniqueId"),
		Status:        claimString(claims, "status"),
		Amount:        claimString(claims, "amount", "Amount"),
		Currency:      claimString(claims, "currency", "Currency"),
	}
	if payload.MerchantTxnID == "" {
		return nil, &Error{Code: CodeTxnNotFound, Message: "callback without merchant transaction id"}
	}
	return payload, nil
}

// checkIssued rejects tokens without an issue time, issued in the future
// or past their expiry. exp is a lifetime in milliseconds; a value at or
// after iat is taken as an absolute expiry. A missing exp falls back to
// TokenTTL.
func (c *Client) checkIssued(claims jwt.MapClaims) error {
	issuedMs, ok := claimMillis(claims, "iat")
	if !ok {
		return errors.New("token has no issue time")
	}
	issued := time.UnixMilli(issuedMs)
	expires := issued.Add(c.cfg.TokenTTL)
	if expMs, ok := claimMillis(claims, "exp"); ok && expMs > 0 {
		if expMs >= issuedMs {
			expires = time.UnixMilli(expMs)
		} else {
			expires = issued.Add(time.Duration(expMs) * time.Millisecond)
		}
	}

	now := c.now()
	if issued.After(now.Add(clockSkew)) {
		return errors.New("token issued in the future")
	}
	if now.After(expires.Add(clockSkew)) {
		return errors.New("token expired")
	}
	return nil
}

func claimMillis(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
