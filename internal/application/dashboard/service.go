// Package dashboard aggregates document and shipment counts for the home
// screen.
package dashboard

import (
	"context"
	"strings"
	"time"

	appaudit "github.com/logidocs/backend/internal/application/audit"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shipment"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const recentActionsLimit = 10

// RecentActions supplies the newest Actions Log entries
type RecentActions interface {
	Recent(ctx context.Context, limit int) ([]appaudit.ActionLogResponse, error)
}

// CountItem is one slice of a chart
type CountItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Summary is the dashboard payload
type Summary struct {
	DocumentsByStatus         []CountItem                  `json:"documents_by_status"`
	DocumentsByType           []CountItem                  `json:"documents_by_type"`
	ShipmentsByTruckingStatus []CountItem                  `json:"shipments_by_trucking_status"`
	TotalDocuments            int64                        `json:"total_documents"`
	OpenShipments             int64                        `json:"open_shipments"`
	RecentActions             []appaudit.ActionLogResponse `json:"recent_actions"`
	GeneratedAt               time.Time                    `json:"generated_at"`
}

// Service builds the dashboard summary
type Service struct {
	documentRepo document.Repository
	shipmentRepo shipment.ShipmentRepository
	actions      RecentActions
	now          func() time.Time
}

// NewService creates a new dashboard Service
func NewService(documentRepo document.Repository, shipmentRepo shipment.ShipmentRepository, actions RecentActions) *Service {
	return &Service{
		documentRepo: documentRepo,
		shipmentRepo: shipmentRepo,
		actions:      actions,
		now:          time.Now,
	}
}

// Summary runs the counts concurrently and returns them in display order.
// Every known status and type is listed, zero counts included.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		byStatus   map[document.Status]int64
		byType     map[document.Type]int64
		byTrucking map[shipment.TruckingStatus]int64
		byShipment map[shipment.Status]int64
		recent     []appaudit.ActionLogResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = s.documentRepo.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		byType, err = s.documentRepo.CountByType(gctx)
		return err
	})
	g.Go(func() (err error) {
		byTrucking, err = s.shipmentRepo.CountByTruckingStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		byShipment, err = s.shipmentRepo.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.actions.Recent(gctx, recentActionsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		OpenShipments: byShipment[shipment.StatusOpen],
		RecentActions: recent,
		GeneratedAt:   s.now().UTC(),
	}
	for _, st := range document.AllStatuses() {
		summary.DocumentsByStatus = append(summary.DocumentsByStatus, CountItem{
			Key:   string(st),
			Label: label(string(st)),
			Count: byStatus[st],
		})
		summary.TotalDocuments += byStatus[st]
	}
	for _, t := range document.AllTypes() {
		summary.DocumentsByType = append(summary.DocumentsByType, CountItem{
			Key:   string(t),
			Label: t.Label(),
			Count: byType[t],
		})
	}
	for _, ts := range shipment.AllTruckingStatuses() {
		summary.ShipmentsByTruckingStatus = append(summary.ShipmentsByTruckingStatus, CountItem{
			Key:   string(ts),
			Label: label(string(ts)),
			Count: byTrucking[ts],
		})
	}
	if summary.RecentActions == nil {
		summary.RecentActions = []appaudit.ActionLogResponse{}
	}
	return summary, nil
}

// label turns an enum key such as IN_TRANSIT into "In Transit". Casers are
// stateful, so each call gets its own.
func label(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
