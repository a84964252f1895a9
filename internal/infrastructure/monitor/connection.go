package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Check probes one dependency. Required checks decide overall health.
type Check struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Probe    func(ctx context.Context) error
}

// PostgresCheck pings the pool.
func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{
		Name:     "postgresql",
		Required: true,
		Timeout:  3 * time.Second,
		Probe: func(ctx context.Context) error {
			if pool == nil {
				return errNotConfigured
			}
			return pool.Ping(ctx)
		},
	}
}

// RedisCheck pings redis. It is required only when redis backs the token denylist.
func RedisCheck(client redislib.UniversalClient, required bool) Check {
	return Check{
		Name:     "redis",
		Required: required,
		Timeout:  2 * time.Second,
		Probe: func(ctx context.Context) error {
			if client == nil {
				return errNotConfigured
			}
			return client.Ping(ctx).Err()
		},
	}
}

var errNotConfigured = errors.New("not configured")

type Monitor struct {
	checks []Check

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks []Check, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether every required dependency answered the last probe.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.status
	out.Services = make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		out.Services[k] = v
	}
	return out
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Services:  make(map[string]bool, len(m.checks)),
		Healthy:   true,
		LastCheck: time.Now(),
	}
	for _, check := range m.checks {
		ok := m.probe(ctx, check)
		status.Services[check.Name] = ok
		if check.Required && !ok {
			status.Healthy = false
		}
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Healthy != status.Healthy {
		m.logger.Info("dependency health changed", zap.Bool("healthy", status.Healthy), zap.Any("services", status.Services))
	}
	return status
}

func (m *Monitor) probe(ctx context.Context, check Check) bool {
	if check.Probe == nil {
		return false
	}
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := check.Probe(probeCtx); err != nil {
		m.logger.Debug("health probe failed", zap.String("service", check.Name), zap.Error(err))
		return false
	}
	return true
}
