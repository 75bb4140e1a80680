package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolStats estadísticas del pool para /health.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// HealthChecker hace ping a la base y reporta el estado del pool.
type HealthChecker struct {
	pool *pgxpool.Pool
}

// NewHealthChecker construye el checker.
func NewHealthChecker(pool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{pool: pool}
}

// Check devuelve las estadísticas; err != nil si el ping falla.
func (h *HealthChecker) Check(ctx context.Context) (*PoolStats, error) {
	stat := h.pool.Stat()
	stats := &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
	if err := h.pool.Ping(ctx); err != nil {
		return stats, err
	}
	stats.Healthy = true
	return stats, nil
}
