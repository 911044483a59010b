package v1

import (
	"net/http"
	"strconv"

	"shopflow-backend/internal/domain"
	"shopflow-backend/internal/usecase"
	"shopflow-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminOrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{orderUC: uc}
}

func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	filter := domain.OrderFilter{
		Page:          page,
		Limit:         limit,
		Status:        r.URL.Query().Get("status"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
		Search:        r.URL.Query().Get("search"),
	}

	orders, total, err := h.orderUC.GetAllOrders(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    orders,
		Meta: domain.Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	})
}

func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "order id required")
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
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

	order, err := h.orderUC.UpdateOrderStatus(r.Context(), id, req.Status, req.Notes, user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Order status updated", Data: order})
}

func (h *AdminOrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "order id required")
		return
	}

	var req struct {
		PaymentStatus string `json:"paymentStatus"`
		Notes         string `json:"notes"`
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

	order, err := h.orderUC.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus, req.Notes, user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Payment status updated", Data: order})
}
