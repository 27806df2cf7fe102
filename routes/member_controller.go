package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-vote/app"
	"github.com/mbolis/quick-vote/httpx"
	"github.com/mbolis/quick-vote/log"
	"github.com/mbolis/quick-vote/model"
	"github.com/mbolis/quick-vote/routes/middlewares"
	"github.com/mbolis/quick-vote/store"
)

func ListActivePolls(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		polls, err := app.Polls.List(r.Context(), model.PollActive)
		if err != nil {
			storeError(w, "db.get_active_polls", nil, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"polls": polls,
		})
	}
}

type ballotView struct {
	model.Poll
	Voted bool `json:"voted"`
}

// GetBallot serves a single active poll to the voter, flagging whether
// they already cast a ballot on it.
func GetBallot(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		voter, ok := requestVoter(w, r)
		if !ok {
			return
		}

		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		poll, err := app.Polls.Get(r.Context(), pollId)
		if err != nil {
			storeError(w, "db.get_poll", pollId, err)
			return
		}
		if poll.Status != model.PollActive {
			// closed polls are not part of the member surface
			httpx.LogNotFound(w, "get_poll.not_active", pollId)
			return
		}

		view := ballotView{Poll: poll}
		_, err = app.Votes.ByVoter(r.Context(), pollId, voter.ID)
		switch {
		case err == nil:
			view.Voted = true
		case errors.Is(err, store.ErrNotFound):
			break
		default:
			storeError(w, "db.get_own_vote", pollId, err)
			return
		}

		render.JSON(w, r, view)
	}
}

func CastVote(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		voter, ok := requestVoter(w, r)
		if !ok {
			return
		}

		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		var ballot struct {
			Votes []model.Choice `json:"votes"`
		}
		err = render.DecodeJSON(r.Body, &ballot)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		vote, err := app.Votes.Cast(r.Context(), pollId, voter, ballot.Votes)
		if err != nil {
			storeError(w, "db.cast_vote", pollId, err)
			return
		}

		app.Live.Publish(pollId)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, vote)
	}
}

// GetOwnVote backs the read-only confirmation view after voting.
func GetOwnVote(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		voter, ok := requestVoter(w, r)
		if !ok {
			return
		}

		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		vote, err := app.Votes.ByVoter(r.Context(), pollId, voter.ID)
		if err != nil {
			storeError(w, "db.get_own_vote", pollId, err)
			return
		}

		render.JSON(w, r, vote)
	}
}

func requestVoter(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	voter, ok := middlewares.CurrentUser(r)
	if !ok {
		httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "request.claims")
	}
	return voter, ok
}
