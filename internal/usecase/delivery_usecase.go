package usecase

import (
	"context"
	"fmt"
	"time"

	"shopflow-backend/internal/domain"
	"shopflow-backend/pkg/logger"
	"shopflow-backend/pkg/utils"

	"github.com/google/uuid"
)

// DeliveryUsecase matches orders to delivery partners by service area and
// tracks the delivery sub-status through to completion.
type DeliveryUsecase struct {
	orderRepo   domain.OrderRepository
	partnerRepo domain.PartnerRepository
	txManager   domain.TransactionManager
}

func NewDeliveryUsecase(orderRepo domain.OrderRepository, partnerRepo domain.PartnerRepository, txManager domain.TransactionManager) *DeliveryUsecase {
	return &DeliveryUsecase{orderRepo: orderRepo, partnerRepo: partnerRepo, txManager: txManager}
}

// checkPartner validates availability and service area for an assignment.
func (u *DeliveryUsecase) checkPartner(ctx context.Context, partnerID string, addr domain.Address) (*domain.DeliveryPartner, error) {
	partner, err := u.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !partner.Active || !partner.IsAvailable {
		return nil, domain.E(domain.KindPartnerUnavailable, "partner %s is not available for assignment", partner.Name)
	}
	if !partner.ServesArea(addr.City, addr.State, addr.Pincode) {
		return nil, domain.E(domain.KindAreaNotServed, "partner %s does not serve %s, %s", partner.Name, addr.City, addr.State)
	}
	return partner, nil
}

type AssignReq struct {
	PartnerID         string     `json:"partnerId"`
	DeliveryFee       float64    `json:"deliveryFee,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// AssignOrderToPartner writes the partner snapshot with a fresh tracking
// number, appends the assignment to the audit history and the timeline,
// and confirms the order, all in a single atomic update.
func (u *DeliveryUsecase) AssignOrderToPartner(ctx context.Context, orderID string, req AssignReq, actor string) (*domain.Order, *domain.DeliveryPartner, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	partner, err := u.checkPartner(ctx, req.PartnerID, order.Customer.Address)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	assignment := domain.PartnerAssignment{
		PartnerID:         partner.ID,
		PartnerName:       partner.Name,
		AssignedBy:        actor,
		AssignedAt:        now,
		DeliveryFee:       req.DeliveryFee,
		EstimatedDelivery: req.EstimatedDelivery,
		TrackingNumber:    utils.GenerateTrackingNumber(),
		DeliveryStatus:    domain.DeliveryStatusAssigned,
		DeliveryNotes:     req.Notes,
	}

	confirmed := domain.OrderStatusConfirmed
	patch := domain.OrderPatch{
		Status:          &confirmed,
		DeliveryPartner: &assignment,
		AppendAssignments: []domain.AssignmentRecord{{
			PartnerID:      partner.ID,
			PartnerName:    partner.Name,
			AssignedBy:     actor,
			AssignedAt:     now,
			TrackingNumber: assignment.TrackingNumber,
			Status:         domain.DeliveryStatusAssigned,
			Notes:          req.Notes,
		}},
		AppendTimeline: []domain.TimelineEntry{{
			Status:    "assigned_to_partner",
			Timestamp: now,
			Actor:     actor,
			Notes:     fmt.Sprintf("Assigned to %s (tracking %s)", partner.Name, assignment.TrackingNumber),
		}},
	}

	updated, err := u.orderRepo.Update(ctx, orderID, patch)
	if err != nil {
		return nil, nil, err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", orderID).
		Str("partner_id", partner.ID).
		Str("tracking_number", assignment.TrackingNumber).
		Msg("Order assigned to delivery partner")

	return updated, partner, nil
}

// UpdateDeliveryStatus records a delivery sub-status change. A delivered
// sub-status is the composed "mark delivered" transition: it stamps the
// actual delivery time, flips the order status, and resolves COD payment
// in the same write.
func (u *DeliveryUsecase) UpdateDeliveryStatus(ctx context.Context, orderID, deliveryStatus, notes, proof, actor string) (*domain.Order, error) {
	if !domain.ValidEnum(domain.DeliveryStatuses, deliveryStatus) {
		return nil, domain.E(domain.KindInvalidArgument, "invalid delivery status: %s", deliveryStatus)
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DeliveryPartner == nil {
		return nil, domain.E(domain.KindNotAssigned, "order %s has no delivery partner assigned", order.OrderNumber)
	}

	now := time.Now()
	assignment := *order.DeliveryPartner
	assignment.DeliveryStatus = deliveryStatus
	if notes != "" {
		assignment.DeliveryNotes = notes
	}
	if proof != "" {
		assignment.DeliveryProof = proof
	}

	patch := domain.OrderPatch{
		DeliveryPartner: &assignment,
		AppendTimeline: []domain.TimelineEntry{{
			Status:    deliveryStatus,
			Timestamp: now,
			Actor:     actor,
			Notes:     notes,
		}},
	}

	if deliveryStatus == domain.DeliveryStatusDelivered {
		assignment.ActualDelivery = &now
		delivered := domain.OrderStatusDelivered
		patch.Status = &delivered

		if eff := PaymentEffectFor(delivered, order.PaymentMethod, order.PaymentStatus); eff != nil {
			details := order.PaymentDetails
			details.PaidAt = &now
			patch.PaymentStatus = &eff.PaymentStatus
			patch.PaymentDetails = &details
		}
	}

	// The order write and the partner counter must land together.
	var updated *domain.Order
	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		updated, err = u.orderRepo.Update(txCtx, orderID, patch)
		if err != nil {
			return err
		}
		if deliveryStatus == domain.DeliveryStatusDelivered {
			return u.partnerRepo.IncrementCompletedDeliveries(txCtx, assignment.PartnerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReassignOrder archives the current assignment into the history with
// status reassigned, then overwrites the snapshot with the new partner.
func (u *DeliveryUsecase) ReassignOrder(ctx context.Context, orderID, newPartnerID, notes, actor string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DeliveryPartner == nil {
		return nil, domain.E(domain.KindNotAssigned, "order %s has no delivery partner to reassign", order.OrderNumber)
	}

	partner, err := u.checkPartner(ctx, newPartnerID, order.Customer.Address)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	previous := *order.DeliveryPartner
	assignment := domain.PartnerAssignment{
		PartnerID:      partner.ID,
		PartnerName:    partner.Name,
		AssignedBy:     actor,
		AssignedAt:     now,
		DeliveryFee:    previous.DeliveryFee,
		TrackingNumber: utils.GenerateTrackingNumber(),
		DeliveryStatus: domain.DeliveryStatusAssigned,
		DeliveryNotes:  notes,
	}

	patch := domain.OrderPatch{
		DeliveryPartner: &assignment,
		AppendAssignments: []domain.AssignmentRecord{{
			PartnerID:      previous.PartnerID,
			PartnerName:    previous.PartnerName,
			AssignedBy:     previous.AssignedBy,
			AssignedAt:     previous.AssignedAt,
			TrackingNumber: previous.TrackingNumber,
			Status:         "reassigned",
			Notes:          notes,
		}},
		AppendTimeline: []domain.TimelineEntry{{
			Status:    "reassigned",
			Timestamp: now,
			Actor:     actor,
			Notes:     fmt.Sprintf("Reassigned from %s to %s", previous.PartnerName, partner.Name),
		}},
	}

	return u.orderRepo.Update(ctx, orderID, patch)
}

// GetAvailablePartners returns active, available partners serving the
// destination. Read-only.
func (u *DeliveryUsecase) GetAvailablePartners(ctx context.Context, city, state, pincode string) ([]domain.DeliveryPartner, error) {
	if city == "" || state == "" {
		return nil, domain.E(domain.KindInvalidArgument, "city and state are required")
	}

	partners, err := u.partnerRepo.GetActiveAvailable(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.DeliveryPartner, 0, len(partners))
	for _, p := range partners {
		if p.ServesArea(city, state, pincode) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// --- Partner Management ---

type CreatePartnerReq struct {
	Name         string               `json:"name"`
	Phone        string               `json:"phone"`
	Email        string               `json:"email,omitempty"`
	VehicleType  string               `json:"vehicleType,omitempty"`
	ServiceAreas []domain.ServiceArea `json:"serviceAreas"`
}

func (u *DeliveryUsecase) CreatePartner(ctx context.Context, req CreatePartnerReq) (*domain.DeliveryPartner, error) {
	if req.Name == "" {
		return nil, domain.E(domain.KindInvalidArgument, "partner name is required")
	}
	if len(req.ServiceAreas) == 0 {
		return nil, domain.E(domain.KindInvalidArgument, "at least one service area is required")
	}
	for _, area := range req.ServiceAreas {
		if area.City == "" || area.State == "" {
			return nil, domain.E(domain.KindInvalidArgument, "service areas require both city and state")
		}
	}

	partner := &domain.DeliveryPartner{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		VehicleType:  req.VehicleType,
		Active:       true,
		IsAvailable:  true,
		ServiceAreas: req.ServiceAreas,
	}
	if err := u.partnerRepo.Create(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

func (u *DeliveryUsecase) ListPartners(ctx context.Context) ([]domain.DeliveryPartner, error) {
	return u.partnerRepo.GetAll(ctx)
}

func (u *DeliveryUsecase) SetPartnerAvailability(ctx context.Context, partnerID string, available bool) (*domain.DeliveryPartner, error) {
	if err := u.partnerRepo.SetAvailability(ctx, partnerID, available); err != nil {
		return nil, err
	}
	return u.partnerRepo.GetByID(ctx, partnerID)
}
