package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-vote/app"
	"github.com/mbolis/quick-vote/httpx"
	"github.com/mbolis/quick-vote/log"
	"github.com/mbolis/quick-vote/model"
	"github.com/mbolis/quick-vote/tally"
)

func CreatePoll(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poll := model.Poll{}
		err := render.DecodeJSON(r.Body, &poll)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		poll, err = app.Polls.Create(r.Context(), poll)
		if err != nil {
			storeError(w, "db.insert_poll", nil, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, poll)
	}
}

func ListPolls(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := model.PollStatus(r.URL.Query().Get("status"))
		switch status {
		case "", model.PollActive, model.PollClosed:
			break
		default:
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.status")
			return
		}

		polls, err := app.Polls.List(r.Context(), status)
		if err != nil {
			storeError(w, "db.get_polls", nil, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"polls": polls,
		})
	}
}

func GetPollById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		render.JSON(w, r, poll)
	}
}

func ClosePoll(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		poll, err := app.Polls.Close(r.Context(), pollId)
		if err != nil {
			storeError(w, "db.close_poll", pollId, err)
			return
		}

		render.JSON(w, r, poll)
	}
}

func DeletePoll(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.Polls.Delete(r.Context(), pollId)
		if err != nil {
			storeError(w, "db.delete_poll", pollId, err)
			return
		}

		app.Live.Publish(pollId)
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetPollResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		result, err := pollResults(app, r, pollId)
		if err != nil {
			storeError(w, "db.get_results", pollId, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func ExportPollResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		result, err := pollResults(app, r, pollId)
		if err != nil {
			storeError(w, "db.export_results", pollId, err)
			return
		}

		w.Header().Set("content-type", "text/csv")
		w.Header().Set("content-disposition", fmt.Sprintf(`attachment; filename="poll-%d-results.csv"`, pollId))
		err = tally.WriteCSV(w, result)
		if err != nil {
			log.Errorf("export_results.write: %s", err)
		}
	}
}

// StreamPollResults pushes the current tally over SSE, then again
// every time a ballot lands on the poll. The subscription is torn down
// when the client goes away.
func StreamPollResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			httpx.LogStatus(w, http.StatusInternalServerError, log.ErrorLevel, "stream_results.no_flusher")
			return
		}

		poll, err := app.Polls.Get(r.Context(), pollId)
		if err != nil {
			storeError(w, "db.get_poll", pollId, err)
			return
		}

		updates, unsubscribe := app.Live.Subscribe(pollId)
		defer unsubscribe()

		w.Header().Set("content-type", "text/event-stream")
		w.Header().Set("cache-control", "no-cache")
		w.WriteHeader(http.StatusOK)

		sendTally := func() error {
			votes, err := app.Votes.ForPoll(r.Context(), pollId)
			if err != nil {
				return err
			}

			payload, err := json.Marshal(tally.Count(poll, votes))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(w, "event: tally\ndata: %s\n\n", payload)
			if err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		err = sendTally()
		if err != nil {
			log.Debugf("stream_results.send: %s", err)
			return
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case <-updates:
				err = sendTally()
				if err != nil {
					log.Debugf("stream_results.send: %s", err)
					return
				}
			}
		}
	}
}

func pollResults(app app.App, r *http.Request, pollId int) (tally.Result, error) {
	poll, err := app.Polls.Get(r.Context(), pollId)
	if err != nil {
		return tally.Result{}, err
	}

	votes, err := app.Votes.ForPoll(r.Context(), pollId)
	if err != nil {
		return tally.Result{}, err
	}

	return tally.Count(poll, votes), nil
}
