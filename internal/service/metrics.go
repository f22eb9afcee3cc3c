package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"estate-api/internal/domain"
)

var opsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "estate_operations_total", Help: "Service operations by outcome"},
	[]string{"op", "status"},
)

func init() { prometheus.MustRegister(opsTotal) }

func observe(op string, err error) {
	opsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		return "denied"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
