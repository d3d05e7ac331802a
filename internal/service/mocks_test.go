package service

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"careerdesk/internal/domain"
	"careerdesk/internal/payment/payglocal"
	"careerdesk/internal/storage"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.User], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.Page[domain.User]), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPurchaseRepo struct{ mock.Mock }

func (m *mockPurchaseRepo) CreateWithPayment(ctx context.Context, purchase *domain.Purchase, payment *domain.Payment) error {
	args := m.Called(ctx, purchase, payment)
	if args.Error(0) == nil {
		purchase.ID = 10
		payment.ID = 20
		payment.PurchaseID = purchase.ID
	}
	return args.Error(0)
}

func (m *mockPurchaseRepo) GetByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *mockPurchaseRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Purchase), args.Error(1)
}

func (m *mockPurchaseRepo) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Purchase], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.Page[domain.Purchase]), args.Error(1)
}

func (m *mockPurchaseRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPurchaseRepo) UpdateStatus(ctx context.Context, id int64, status domain.PurchaseStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetByMerchantTxnID(ctx context.Context, merchantTxnID string) (*domain.Payment, error) {
	args := m.Called(ctx, merchantTxnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPaymentRepo) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Payment], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.Page[domain.Payment]), args.Error(1)
}

func (m *mockPaymentRepo) ListByStatuses(ctx context.Context, updatedBefore time.Time, statuses ...domain.PaymentStatus) ([]domain.Payment, error) {
	args := m.Called(ctx, updatedBefore, statuses)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *domain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

type mockPackageRepo struct{ mock.Mock }

func (m *mockPackageRepo) Create(ctx context.Context, pkg *domain.Package) error {
	args := m.Called(ctx, pkg)
	if args.Error(0) == nil {
		pkg.ID = 1
	}
	return args.Error(0)
}

func (m *mockPackageRepo) Update(ctx context.Context, pkg *domain.Package) error {
	return m.Called(ctx, pkg).Error(0)
}

func (m *mockPackageRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPackageRepo) GetByID(ctx context.Context, id int64) (*domain.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *mockPackageRepo) GetBySlug(ctx context.Context, slug string) (*domain.Package, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *mockPackageRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Package, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Package), args.Error(1)
}

func (m *mockPackageRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPackageRepo) List(ctx context.Context, query domain.ListQuery, activeOnly bool) (domain.Page[domain.Package], error) {
	args := m.Called(ctx, query, activeOnly)
	return args.Get(0).(domain.Page[domain.Package]), args.Error(1)
}

type mockBlogRepo struct{ mock.Mock }

func (m *mockBlogRepo) Create(ctx context.Context, blog *domain.Blog) error {
	args := m.Called(ctx, blog)
	if args.Error(0) == nil {
		blog.ID = 1
	}
	return args.Error(0)
}

func (m *mockBlogRepo) Update(ctx context.Context, blog *domain.Blog) error {
	return m.Called(ctx, blog).Error(0)
}

func (m *mockBlogRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBlogRepo) GetByID(ctx context.Context, id int64) (*domain.Blog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Blog), args.Error(1)
}

func (m *mockBlogRepo) GetBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Blog), args.Error(1)
}

func (m *mockBlogRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlogRepo) List(ctx context.Context, query domain.ListQuery, publishedOnly bool) (domain.Page[domain.Blog], error) {
	args := m.Called(ctx, query, publishedOnly)
	return args.Get(0).(domain.Page[domain.Blog]), args.Error(1)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Initiate(ctx context.Context, req payglocal.InitiateRequest) (*payglocal.InitiateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payglocal.InitiateResponse), args.Error(1)
}

func (m *mockGateway) Status(ctx context.Context, gid string) (*payglocal.StatusResponse, error) {
	args := m.Called(ctx, gid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payglocal.StatusResponse), args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, gid string, req payglocal.RefundRequest) (*payglocal.RefundResponse, error) {
	args := m.Called(ctx, gid, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payglocal.RefundResponse), args.Error(1)
}

func (m *mockGateway) VerifyCallback(token string) (*payglocal.CallbackPayload, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payglocal.CallbackPayload), args.Error(1)
}

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Key(parts ...string) string {
	return storage.JoinKey(append([]string{"test"}, parts...)...)
}

func (m *mockStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return m.Called(ctx, key, contentType, size).Error(0)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]storage.ObjectInfo), args.Error(1)
}

func (m *mockStorage) DeletePrefix(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

func (m *mockStorage) GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, expires)
	return args.String(0), args.Error(1)
}
