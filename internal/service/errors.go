package service

import (
	"errors"
	"fmt"

	"careerdesk/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing email.
	ErrUserAlreadyExists = fmt.Errorf("user already exists: %w", domain.ErrConflict)
	// ErrUserHasPurchases blocks deleting a customer with order history.
	ErrUserHasPurchases = fmt.Errorf("user has purchases: %w", domain.ErrConflict)
	// ErrEmptyCart is returned when a quote or checkout has no lines.
	ErrEmptyCart = &domain.ValidationError{Fields: []string{"cart is empty"}}
	// ErrPaymentsDisabled is returned when no payment gateway is configured.
	ErrPaymentsDisabled = errors.New("online payments are not configured")
	// ErrStorageDisabled is returned when uploads are attempted without object storage.
	ErrStorageDisabled = errors.New("file storage is not configured")
)
