// Package reconciler polls the payment gateway for payments whose final
// outcome never reached us through the callback.
package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"careerdesk/internal/service"
)

var ErrNotStarted = errors.New("reconciler not started")

// Reconciler refreshes open payments against the gateway in the background.
type Reconciler interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(ctx context.Context, paymentID int64) error
	Resume(ctx context.Context) error
	Cancel(ctx context.Context, paymentID int64) error
}

type Config struct {
	Interval      time.Duration
	StaleAfter    time.Duration
	MaxConcurrent int
	Logger        *logrus.Logger
}

type manager struct {
	cfg      Config
	payments service.PaymentService

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	active map[int64]*refreshHandle
}

type refreshHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, payments service.PaymentService) Reconciler {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 10 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:      cfg,
		payments: payments,
		sem:      make(chan struct{}, cfg.MaxConcurrent),
		active:   make(map[int64]*refreshHandle),
	}
}

// Start begins the periodic sweep. The first sweep runs after one interval;
// call Resume to sweep immediately.
func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.ctx != nil {
		m.mu.Unlock()
		return errors.New("reconciler already started")
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loop()

	m.cfg.Logger.WithFields(logrus.Fields{
		"interval":    m.cfg.Interval,
		"stale_after": m.cfg.StaleAfter,
	}).Info("payment reconciler started")
	return nil
}

func (m *manager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if err := m.Resume(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.cfg.Logger.WithError(err).Warn("payment sweep failed")
			}
		}
	}
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("payment reconciler stopped")
}

// Enqueue schedules one refresh. A payment already being refreshed is skipped.
func (m *manager) Enqueue(ctx context.Context, paymentID int64) error {
	if m.ctx == nil {
		return ErrNotStarted
	}
	m.spawn(paymentID)
	return nil
}

// Resume schedules a refresh for every open payment older than StaleAfter.
func (m *manager) Resume(ctx context.Context) error {
	if m.ctx == nil {
		return ErrNotStarted
	}
	stale, err := m.payments.ListStale(ctx, m.cfg.StaleAfter)
	if err != nil {
		return err
	}

	scheduled := 0
	for i := range stale {
		if m.spawn(stale[i].ID) {
			scheduled++
		}
	}
	if scheduled > 0 {
		m.cfg.Logger.WithField("count", scheduled).Info("refreshing stale payments")
	}
	return nil
}

func (m *manager) spawn(paymentID int64) bool {
	refreshCtx, cancel := context.WithCancel(m.ctx)
	handle := &refreshHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if !m.register(paymentID, handle) {
		cancel()
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.unregister(paymentID)
			cancel()
			close(handle.done)
		}()
		select {
		case <-m.ctx.Done():
			return
		case <-refreshCtx.Done():
			return
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
			m.refresh(refreshCtx, paymentID)
		}
	}()
	return true
}

func (m *manager) refresh(ctx context.Context, paymentID int64) {
	logger := m.cfg.Logger.WithField("payment_id", paymentID)
	payment, err := m.payments.Refresh(ctx, paymentID)
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("refresh cancelled")
			return
		}
		logger.WithError(err).Warn("refresh payment failed")
		return
	}
	logger.WithField("status", payment.Status).Debug("payment refreshed")
}

func (m *manager) register(id int64, handle *refreshHandle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.active[id]; busy {
		return false
	}
	m.active[id] = handle
	return true
}

func (m *manager) unregister(id int64) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}

func (m *manager) handle(id int64) (*refreshHandle, bool) {
	m.mu.Lock()
	handle, ok := m.active[id]
	m.mu.Unlock()
	return handle, ok
}

// Cancel stops a queued or running refresh and waits for it to finish.
func (m *manager) Cancel(ctx context.Context, paymentID int64) error {
	handle, ok := m.handle(paymentID)
	if !ok {
		return nil
	}

	handle.cancel()

	select {
	case <-handle.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
