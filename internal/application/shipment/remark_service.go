package shipment

import (
	"context"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ListRemarks returns the remarks of a shipment, oldest first
func (s *ShipmentService) ListRemarks(ctx context.Context, pro string) ([]RemarkResponse, error) {
	sh, err := s.Load(ctx, pro)
	if err != nil {
		return nil, err
	}
	remarks, err := s.remarkRepo.ListByShipment(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	out := make([]RemarkResponse, len(remarks))
	for i, r := range remarks {
		out[i] = ToRemarkResponse(r)
	}
	return out, nil
}

// AddRemark leaves a remark on a shipment. Every department may comment,
// closed shipments included.
func (s *ShipmentService) AddRemark(ctx context.Context, actor shared.Actor, pro string, req RemarkRequest) (*RemarkResponse, error) {
	sh, err := s.Load(ctx, pro)
	if err != nil {
		return nil, err
	}
	remark, err := shipment.NewRemark(sh, req.Body, actor)
	if err != nil {
		return nil, err
	}
	if err := s.remarkRepo.Create(ctx, remark); err != nil {
		return nil, err
	}

	s.publishRemark(ctx, shipment.EventTypeRemarkAdded, remark, actor)
	response := ToRemarkResponse(remark)
	return &response, nil
}

// EditRemark changes the body of a remark; author or admin only
func (s *ShipmentService) EditRemark(ctx context.Context, actor shared.Actor, pro string, remarkID uuid.UUID, req RemarkRequest) (*RemarkResponse, error) {
	remark, err := s.loadRemark(ctx, pro, remarkID)
	if err != nil {
		return nil, err
	}
	if err := remark.Edit(req.Body, actor); err != nil {
		return nil, err
	}
	if err := s.remarkRepo.Update(ctx, remark); err != nil {
		return nil, err
	}

	s.publishRemark(ctx, shipment.EventTypeRemarkEdited, remark, actor)
	response := ToRemarkResponse(remark)
	return &response, nil
}

// DeleteRemark removes a remark; author or admin only
func (s *ShipmentService) DeleteRemark(ctx context.Context, actor shared.Actor, pro string, remarkID uuid.UUID) error {
	remark, err := s.loadRemark(ctx, pro, remarkID)
	if err != nil {
		return err
	}
	if !remark.CanModify(actor) {
		return shipment.ErrRemarkAuthorOnly
	}
	if err := s.remarkRepo.Delete(ctx, remark.ID); err != nil {
		return err
	}

	s.publishRemark(ctx, shipment.EventTypeRemarkDeleted, remark, actor)
	return nil
}

func (s *ShipmentService) loadRemark(ctx context.Context, pro string, remarkID uuid.UUID) (*shipment.Remark, error) {
	sh, err := s.Load(ctx, pro)
	if err != nil {
		return nil, err
	}
	remark, err := s.remarkRepo.FindByID(ctx, remarkID)
	if err != nil {
		return nil, err
	}
	if remark.ShipmentID != sh.ID {
		return nil, shipment.ErrRemarkWrongShipment
	}
	return remark, nil
}

func (s *ShipmentService) publishRemark(ctx context.Context, eventType string, r *shipment.Remark, actor shared.Actor) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, shipment.NewRemarkEvent(eventType, r, actor)); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to publish remark event",
			zap.String("remark_id", r.ID.String()),
			zap.Error(err))
	}
}
