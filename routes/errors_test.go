package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbolis/quick-vote/store"
	"github.com/stretchr/testify/assert"
)

func TestStoreErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already voted", store.ErrAlreadyVoted, http.StatusConflict},
		{"poll closed", store.ErrPollClosed, http.StatusConflict},
		{"poll ended", store.ErrPollEnded, http.StatusConflict},
		{"validation", store.ValidationError{Msg: "missing selection"}, http.StatusBadRequest},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			storeError(w, "test.op", 1, tt.err)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestStoreErrorMessages(t *testing.T) {
	w := httptest.NewRecorder()
	storeError(w, "test.op", 1, store.ValidationError{Msg: `missing selection for role "President"`})
	assert.Equal(t, "missing selection for role \"President\"\n", w.Body.String())

	w = httptest.NewRecorder()
	storeError(w, "test.op", 1, store.ErrAlreadyVoted)
	assert.Equal(t, "already voted\n", w.Body.String())
}
