package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
)

const (
	minPasswordLength = 8
	defaultAdminName  = "Administrator"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.User], error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	// EnsureAdmin creates an admin account, or promotes and resets the
	// password of an existing one. The bool reports whether it was created.
	EnsureAdmin(ctx context.Context, in RegisterInput) (*domain.User, bool, error)
}

type userService struct {
	users     repository.UserRepository
	purchases repository.PurchaseRepository
	logger    *logrus.Logger
}

func NewUserService(users repository.UserRepository, purchases repository.PurchaseRepository, logger *logrus.Logger) UserService {
	return &userService{
		users:     users,
		purchases: purchases,
		logger:    logger,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user, err := s.newUser(in, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.User], error) {
	page, err := s.users.List(ctx, query.Normalize())
	if err != nil {
		return page, err
	}
	for i := range page.Items {
		page.Items[i].PasswordHash = ""
	}
	return page, nil
}

func (s *userService) UpdateRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.Invalid(fmt.Sprintf("unknown role %q", role))
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user role changed")
	return s.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.purchases.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUserHasPurchases
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("user_id", id).Info("user deleted")
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, in RegisterInput) (*domain.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(in.Email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if strings.TrimSpace(in.Name) == "" {
			in.Name = defaultAdminName
		}
		user, err := s.newUser(in, domain.RoleAdmin)
		if err != nil {
			return nil, false, err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, err
		}
		return sanitizeUser(user), true, nil
	case err != nil:
		return nil, false, err
	}

	if err := checkPassword(in.Password); err != nil {
		return nil, false, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}
	existing.Role = domain.RoleAdmin
	existing.PasswordHash = hash
	if name := strings.TrimSpace(in.Name); name != "" {
		existing.Name = name
	}
	if err := existing.Validate(); err != nil {
		return nil, false, err
	}
	if err := s.users.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	return sanitizeUser(existing), false, nil
}

func (s *userService) newUser(in RegisterInput, role domain.Role) (*domain.User, error) {
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:  strings.TrimSpace(in.Name),
		Email: domain.NormalizeEmail(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Role:  role,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return user, nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
