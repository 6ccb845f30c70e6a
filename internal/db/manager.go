package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Role identifies one of the two store handles.
type Role string

// Handle roles. The read handle is expected to carry read-only credentials; the store's own
// authorization enforces that, not this package.
const (
	RoleRead  Role = "read"
	RoleWrite Role = "write"
)

// Credentials authenticate one handle.
type Credentials struct {
	Username string
	Password string
}

// Dialer constructs a store handle for a role.
type Dialer func(ctx context.Context, role Role, creds Credentials) (Store, error)

type managerState int

const (
	stateUninitialized managerState = iota
	stateReady
	stateClosed
)

// Manager owns the read and write handles of the document store.
// Open is meant to be called once from the startup path; getters are safe for concurrent use.
type Manager struct {
	dial      Dialer
	readCreds Credentials
	wrCreds   Credentials
	readiness time.Duration
	logger    *zap.Logger

	mu    sync.RWMutex
	state managerState
	read  Store
	write Store
	info  ClusterInfo
}

// NewManager creates a Manager. Nothing is dialed until Open.
func NewManager(dial Dialer, read, write Credentials, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{dial: dial, readCreds: read, wrCreds: write, logger: logger}
}

// WithReadiness makes Open poll each handle until it answers or timeout expires,
// instead of probing once.
func (m *Manager) WithReadiness(timeout time.Duration) *Manager {
	m.readiness = timeout
	return m
}

// Open dials and verifies both handles. On failure every handle dialed so far is closed
// before the error is returned. Calling Open on an open manager is a no-op.
func (m *Manager) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateReady {
		m.logger.Warn("document store handles already initialized")
		return nil
	}

	read, err := m.connect(ctx, RoleRead, m.readCreds)
	if err != nil {
		m.logger.Error("failed to initialize document store", zap.Error(err))
		return err
	}

	write, err := m.connect(ctx, RoleWrite, m.wrCreds)
	if err != nil {
		read.Close()
		m.logger.Error("failed to initialize document store", zap.Error(err))
		return err
	}

	info, err := read.Info(ctx)
	if err != nil {
		read.Close()
		write.Close()
		m.logger.Error("failed to initialize document store", zap.Error(err))
		return fmt.Errorf("cluster info: %w", err)
	}

	m.read, m.write, m.info = read, write, info
	m.state = stateReady

	m.logger.Info("Connected to document store",
		zap.String("cluster", info.Name),
		zap.String("version", info.Version),
	)
	m.logger.Info("Read-only handle initialized")
	m.logger.Info("Read-write handle initialized")
	return nil
}

func (m *Manager) connect(ctx context.Context, role Role, creds Credentials) (Store, error) {
	s, err := m.dial(ctx, role, creds)
	if err != nil {
		return nil, fmt.Errorf("create %s handle: %w", role, err)
	}
	if err := waitForReady(ctx, s, m.readiness); err != nil {
		s.Close()
		return nil, fmt.Errorf("ping %s handle: %w", role, err)
	}
	return s, nil
}

// waitForReady polls Ping until the store responds or timeout expires.
// A zero timeout probes exactly once.
func waitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	if timeout <= 0 {
		return p.Ping(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = p.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for store: %w", lastErr)
		case <-ticker.C:
		}
	}
}

// Reader returns the read-only handle.
func (m *Manager) Reader() (Store, error) {
	return m.handle(RoleRead)
}

// Writer returns the read-write handle.
func (m *Manager) Writer() (Store, error) {
	return m.handle(RoleWrite)
}

func (m *Manager) handle(role Role) (Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch m.state {
	case stateUninitialized:
		return nil, fmt.Errorf("%s handle: %w; call Open during startup", role, ErrNotInitialized)
	case stateClosed:
		return nil, fmt.Errorf("%s handle: %w", role, ErrClosed)
	}
	if role == RoleRead {
		return m.read, nil
	}
	return m.write, nil
}

// ClusterInfo returns metadata recorded by Open.
func (m *Manager) ClusterInfo() ClusterInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info
}

// HealthCheck probes both handles independently. A missing handle reports false.
func (m *Manager) HealthCheck(ctx context.Context) map[Role]bool {
	m.mu.RLock()
	read, write := m.read, m.write
	m.mu.RUnlock()

	return map[Role]bool{
		RoleRead:  m.probe(ctx, RoleRead, read),
		RoleWrite: m.probe(ctx, RoleWrite, write),
	}
}

func (m *Manager) probe(ctx context.Context, role Role, s Store) bool {
	if s == nil {
		return false
	}
	if err := s.Ping(ctx); err != nil {
		m.logger.Error("health check failed", zap.String("role", string(role)), zap.Error(err))
		return false
	}
	return true
}

// Close disposes both handles. Safe to call repeatedly; the manager can be opened again.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.read != nil {
		m.read.Close()
		m.logger.Info("Read handle closed")
		m.read = nil
	}
	if m.write != nil {
		m.write.Close()
		m.logger.Info("Write handle closed")
		m.write = nil
	}
	if m.state == stateReady {
		m.state = stateClosed
	}
}
