package routes

import (
	"errors"
	"net/http"

	"github.com/mbolis/quick-vote/httpx"
	"github.com/mbolis/quick-vote/log"
	"github.com/mbolis/quick-vote/store"
)

// storeError maps store failures onto HTTP statuses: not-found to 404,
// ballot conflicts to 409, validation to 400, anything else to 500.
func storeError(w http.ResponseWriter, code string, id any, err error) {
	var verr store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.LogNotFound(w, code, id)
	case errors.Is(err, store.ErrAlreadyVoted):
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "already voted")
	case errors.Is(err, store.ErrPollClosed):
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "poll is closed")
	case errors.Is(err, store.ErrPollEnded):
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "poll end date has passed")
	case errors.As(err, &verr):
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "%s", verr.Msg)
	default:
		httpx.LogInternalError(w, code, err)
	}
}
