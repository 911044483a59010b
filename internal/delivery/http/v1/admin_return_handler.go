package v1

import (
	"net/http"
	"strconv"

	"shopflow-backend/internal/domain"
	"shopflow-backend/internal/usecase"
	"shopflow-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminReturnHandler struct {
	returnUC *usecase.ReturnUsecase
}

func NewAdminReturnHandler(uc *usecase.ReturnUsecase) *AdminReturnHandler {
	return &AdminReturnHandler{returnUC: uc}
}

func (h *AdminReturnHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	filter := domain.ReturnFilter{
		Page:   page,
		Limit:  limit,
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}

	returns, total, err := h.returnUC.ListReturns(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    returns,
		Meta: domain.Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	})
}

func (h *AdminReturnHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req usecase.UpdateReturnStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	ret, err := h.returnUC.UpdateReturnStatus(r.Context(), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Return status updated", Data: ret})
}

func (h *AdminReturnHandler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		TransactionID string `json:"transactionId"`
		Method        string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	ret, err := h.returnUC.ProcessRefund(r.Context(), id, req.TransactionID, req.Method)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Refund processing", Data: ret})
}

func (h *AdminReturnHandler) CompleteRefund(w http.ResponseWriter, r *http.Request) {
	ret, err := h.returnUC.CompleteRefund(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Refund completed", Data: ret})
}

func (h *AdminReturnHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.returnUC.GetStats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: stats})
}
