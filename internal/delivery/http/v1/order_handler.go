package v1

import (
	"net/http"

	"shopflow-backend/internal/domain"
	"shopflow-backend/internal/usecase"
	"shopflow-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: uc}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	var userID *string
	if user := currentUser(r); user != nil {
		userID = &user.ID
	}

	order, err := h.orderUC.CreateOrder(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, domain.Response{Success: true, Data: order})
}

func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	orders, err := h.orderUC.GetMyOrders(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: orders})
}

// GetOrder serves the order detail to its owner or any admin.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "order id required")
		return
	}

	order, err := h.orderUC.GetOrder(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	user := currentUser(r)
	if !user.IsAdmin() {
		if user == nil || order.UserID == nil || *order.UserID != user.ID {
			utils.WriteError(w, http.StatusForbidden, domain.KindForbidden, "order does not belong to this user")
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: order})
}
