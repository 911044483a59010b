package v1

import (
	"net/http"

	"shopflow-backend/internal/domain"
	"shopflow-backend/internal/usecase"
	"shopflow-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// DeliveryHandler exposes the admin-side delivery assignment endpoints.
type DeliveryHandler struct {
	deliveryUC *usecase.DeliveryUsecase
}

func NewDeliveryHandler(uc *usecase.DeliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{deliveryUC: uc}
}

func (h *DeliveryHandler) AssignOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")

	var req usecase.AssignReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}
	if req.PartnerID == "" {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "partnerId is required")
		return
	}

	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	order, partner, err := h.deliveryUC.AssignOrderToPartner(r.Context(), orderID, req, user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Order assigned to " + partner.Name,
		Data:    order,
	})
}

func (h *DeliveryHandler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")

	var req struct {
		DeliveryStatus string `json:"deliveryStatus"`
		Notes          string `json:"notes"`
		DeliveryProof  string `json:"deliveryProof"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	order, err := h.deliveryUC.UpdateDeliveryStatus(r.Context(), orderID, req.DeliveryStatus, req.Notes, req.DeliveryProof, user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Delivery status updated", Data: order})
}

func (h *DeliveryHandler) ReassignOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")

	var req struct {
		NewPartnerID string `json:"newPartnerId"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}
	if req.NewPartnerID == "" {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "newPartnerId is required")
		return
	}

	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	order, err := h.deliveryUC.ReassignOrder(r.Context(), orderID, req.NewPartnerID, req.Notes, user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Order reassigned", Data: order})
}

func (h *DeliveryHandler) AvailablePartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.deliveryUC.GetAvailablePartners(r.Context(),
		r.URL.Query().Get("city"),
		r.URL.Query().Get("state"),
		r.URL.Query().Get("pincode"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: partners})
}

func (h *DeliveryHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreatePartnerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	partner, err := h.deliveryUC.CreatePartner(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, domain.Response{Success: true, Data: partner})
}

func (h *DeliveryHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.deliveryUC.ListPartners(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: partners})
}

func (h *DeliveryHandler) SetPartnerAvailability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		IsAvailable bool `json:"isAvailable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	partner, err := h.deliveryUC.SetPartnerAvailability(r.Context(), id, req.IsAvailable)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: partner})
}
