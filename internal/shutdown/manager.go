// Package shutdown releases registered components in reverse registration
// order, once, with a per-component timeout.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"bair-timelapse/internal/logger"
)

// DefaultTimeout bounds each component's shutdown
const DefaultTimeout = 10 * time.Second

type Component interface {
	Shutdown(ctx context.Context) error
}

// Func adapts a plain function to Component
type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error {
	return f(ctx)
}

type entry struct {
	name      string
	component Component
}

type Manager struct {
	components []entry
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
	err        error
}

func NewManager(log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		logger:  log,
		timeout: DefaultTimeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetTimeout changes the per-component timeout
func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.timeout = d
	}
}

func (m *Manager) Register(name string, component Component) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, entry{name: name, component: component})
}

// Listen shuts down on SIGINT or SIGTERM and then calls onSignal, if set
func (m *Manager) Listen(onSignal func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
			if onSignal != nil {
				onSignal()
			}
		case <-m.done:
		}
	}()
}

// Shutdown runs every component's Shutdown, newest first. Later calls
// return the first call's result.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return m.err
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		if err := m.shutdownOne(m.components[i]); err != nil {
			errs = append(errs, err)
		}
	}
	m.err = errors.Join(errs...)

	m.logger.Info("ShutdownManager", "shutdown sequence completed", map[string]interface{}{
		"failures": len(errs),
	})
	return m.err
}

func (m *Manager) shutdownOne(e entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- e.component.Shutdown(ctx)
	}()

	select {
	case err := <-result:
		if err != nil {
			m.logger.Error("ShutdownManager", err, map[string]interface{}{"component": e.name})
			return fmt.Errorf("%s: %w", e.name, err)
		}
		m.logger.Debug("ShutdownManager", "component stopped", map[string]interface{}{"component": e.name})
		return nil
	case <-ctx.Done():
		m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
			"component": e.name,
			"timeout":   m.timeout.String(),
		})
		return fmt.Errorf("%s: %w", e.name, ctx.Err())
	}
}

// Context is cancelled when shutdown begins
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
