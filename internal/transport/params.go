package transport

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/go-chi/chi"
)

// PathID reads a positive integer route parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, internal.MsgFieldInvalid,
			name+" must be a positive integer", internal.ErrCodeValidationFailed, name)
	}
	return id, nil
}
