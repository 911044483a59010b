package v1

import (
	"net/http"

	"shopflow-backend/internal/domain"
	"shopflow-backend/internal/usecase"
	"shopflow-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// ReturnHandler exposes the customer-side return endpoints.
type ReturnHandler struct {
	returnUC *usecase.ReturnUsecase
}

func NewReturnHandler(uc *usecase.ReturnUsecase) *ReturnHandler {
	return &ReturnHandler{returnUC: uc}
}

func (h *ReturnHandler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	var req usecase.CreateReturnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	ret, err := h.returnUC.CreateReturnRequest(r.Context(), user.ID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, domain.Response{Success: true, Data: ret})
}

func (h *ReturnHandler) GetMyReturns(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	returns, err := h.returnUC.GetMyReturns(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: returns})
}

// GetReturn serves the return detail to its owner or any admin.
func (h *ReturnHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	id := r.PathValue("id")
	var (
		ret *domain.Return
		err error
	)
	if user.IsAdmin() {
		ret, err = h.returnUC.GetReturn(r.Context(), id)
	} else {
		ret, err = h.returnUC.GetMyReturn(r.Context(), id, user.ID)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: ret})
}

func (h *ReturnHandler) UpdateReturn(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	var req usecase.UpdateReturnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid request body")
		return
	}

	ret, err := h.returnUC.UpdateReturnRequest(r.Context(), r.PathValue("id"), user.ID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Return request updated", Data: ret})
}

func (h *ReturnHandler) CancelReturn(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, domain.KindForbidden, "authentication required")
		return
	}

	ret, err := h.returnUC.CancelReturnRequest(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Return request cancelled", Data: ret})
}
