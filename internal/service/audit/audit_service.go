// Package audit reconciles seat counters against the reservation ledger.
package audit

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/metrics"
)

type Auditor interface {
	Audit(ctx context.Context) ([]domain.InventoryAudit, error)
}

type AuditService struct {
	flights Auditor
}

func NewAuditService(flights Auditor) *AuditService {
	return &AuditService{flights: flights}
}

// Run reports every flight and returns those whose counter disagrees with
// the ledger.
func (s *AuditService) Run(ctx context.Context) ([]domain.InventoryAudit, error) {
	audits, err := s.flights.Audit(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit inventory: %w", err)
	}

	var drifted []domain.InventoryAudit
	for _, a := range audits {
		metrics.InventoryDrift.WithLabelValues(a.Number).Set(float64(a.Drift()))
		if a.Drift() != 0 {
			drifted = append(drifted, a)
			log.FromContext(ctx).WithField("flight", a.Number).
				WithField("total_seats", a.TotalSeats).
				WithField("available_seats", a.AvailableSeats).
				WithField("reservations", a.Reservations).
				Error("inventory drift detected")
		}
	}
	log.FromContext(ctx).WithField("flights", len(audits)).WithField("drifted", len(drifted)).Info("inventory audit finished")
	return drifted, nil
}
