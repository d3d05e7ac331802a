package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerdesk/internal/config"
	"careerdesk/internal/service"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "app.db"),
		},
		Payment: config.PaymentConfig{Currency: "INR", TimeoutSeconds: 5},
	}
}

func TestNewWithoutOptionalIntegrations(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := context.Background()

	a, err := New(ctx, testConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Storage)
	assert.Nil(t, a.Gateway)

	user, err := a.Users.Register(ctx, service.RegisterInput{
		Name: "Kavya", Email: "kavya@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	pkg, err := a.Packages.Create(ctx, service.PackageInput{
		Name: "Resume Review", Summary: "One pass over your resume", PriceMinor: 99900, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "resume-review", pkg.Slug)

	_, err = a.Orders.Checkout(ctx, user.ID, []service.CartLine{{PackageID: pkg.ID, Quantity: 1}})
	assert.ErrorIs(t, err, service.ErrPaymentsDisabled)

	_, err = a.Blogs.AttachCover(ctx, 1, service.Upload{})
	assert.Error(t, err)

	dashboard, err := a.Reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.Counts.Users)
	assert.Equal(t, int64(1), dashboard.Counts.ActivePackages)
}

func TestNewRejectsUnreadableGatewayKeys(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := testConfig(t)
	cfg.Payment.BaseURL = "https://api.uat.payglocal.in"
	cfg.Payment.MerchantID = "careerdesk"
	cfg.Payment.GatewayPublicKeyPath = filepath.Join(t.TempDir(), "missing.pem")
	cfg.Payment.MerchantPrivateKeyPath = filepath.Join(t.TempDir(), "missing.pem")

	_, err := New(context.Background(), cfg, logger)
	assert.ErrorContains(t, err, "setup payment gateway")
}
