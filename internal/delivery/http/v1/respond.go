package v1

import (
	"net/http"

	"shopflow-backend/internal/domain"
	"shopflow-backend/pkg/logger"
	"shopflow-backend/pkg/utils"
)

// statusForKind maps the error taxonomy onto HTTP statuses. Every other
// classified kind is a correctable request error.
func statusForKind(kind string) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindDuplicateReturn:
		return http.StatusConflict
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Request failed")
		utils.WriteError(w, status, "Internal", "internal server error")
		return
	}
	utils.WriteError(w, status, kind, err.Error())
}

func currentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(domain.UserContextKey).(*domain.User)
	return user
}
