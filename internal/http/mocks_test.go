package http

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"careerdesk/internal/domain"
	"careerdesk/internal/reports"
	"careerdesk/internal/service"
	"careerdesk/internal/storage"
)

// Each mock embeds its interface so only the methods a test relies on are stubbed.

type mockUsers struct {
	mock.Mock
	service.UserService
}

func (m *mockUsers) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.User], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.Page[domain.User]), args.Error(1)
}

func (m *mockUsers) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockBlogs struct {
	mock.Mock
	service.BlogService
}

func (m *mockBlogs) GetPublished(ctx context.Context, slug string) (*domain.Blog, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Blog), args.Error(1)
}

func (m *mockBlogs) Get(ctx context.Context, id int64) (*domain.Blog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Blog), args.Error(1)
}

func (m *mockBlogs) Create(ctx context.Context, in service.BlogInput) (*domain.Blog, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Blog), args.Error(1)
}

type mockPackages struct {
	mock.Mock
	service.PackageService
}

func (m *mockPackages) ListActive(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Package], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.Page[domain.Package]), args.Error(1)
}

func (m *mockPackages) Create(ctx context.Context, in service.PackageInput) (*domain.Package, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *mockPackages) Quote(ctx context.Context, lines []service.CartLine) (*service.Quote, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Quote), args.Error(1)
}

type mockInquiries struct {
	mock.Mock
	service.InquiryService
}

func (m *mockInquiries) SubmitMessage(ctx context.Context, in service.MessageInput) (*domain.Message, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

type mockOrders struct {
	mock.Mock
	service.OrderService
}

func (m *mockOrders) Checkout(ctx context.Context, userID int64, lines []service.CartLine) (*service.CheckoutResult, error) {
	args := m.Called(ctx, userID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutResult), args.Error(1)
}

func (m *mockOrders) GetMine(ctx context.Context, userID, purchaseID int64) (*domain.Purchase, error) {
	args := m.Called(ctx, userID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

type mockPayments struct {
	mock.Mock
	service.PaymentService
}

func (m *mockPayments) HandleCallback(ctx context.Context, token string) (*domain.Payment, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPayments) Refund(ctx context.Context, paymentID, amountMinor int64) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID, amountMinor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPayments) Refresh(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Start(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockReconciler) Shutdown()                       { m.Called() }
func (m *mockReconciler) Enqueue(ctx context.Context, paymentID int64) error {
	return m.Called(ctx, paymentID).Error(0)
}
func (m *mockReconciler) Resume(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockReconciler) Cancel(ctx context.Context, paymentID int64) error {
	return m.Called(ctx, paymentID).Error(0)
}

type mockStorage struct {
	mock.Mock
	storage.Service
}

func (m *mockStorage) Key(parts ...string) string {
	return storage.JoinKey(append([]string{"test"}, parts...)...)
}

func (m *mockStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]storage.ObjectInfo), args.Error(1)
}

func (m *mockStorage) GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, expires)
	return args.String(0), args.Error(1)
}

type stubDashboard struct {
	dashboard *reports.Dashboard
	err       error
}

func (s stubDashboard) Dashboard(context.Context) (*reports.Dashboard, error) {
	return s.dashboard, s.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
