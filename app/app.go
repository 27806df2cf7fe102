package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/mbolis/quick-vote/config"
	"github.com/mbolis/quick-vote/live"
	"github.com/mbolis/quick-vote/store"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Polls *store.PollStore
	Votes *store.VoteStore
	Users *store.UserStore
	Live  *live.Hub
}

func New(db *sql.DB, bearerServer *oauth.BearerServer, cfg config.Config) App {
	return App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
		Polls:        store.NewPollStore(db),
		Votes:        store.NewVoteStore(db, cfg.EnforceEndDate),
		Users:        store.NewUserStore(db),
		Live:         live.NewHub(),
	}
}
