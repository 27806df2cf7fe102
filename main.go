package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mbolis/quick-vote/app"
	"github.com/mbolis/quick-vote/config"
	"github.com/mbolis/quick-vote/database"
	"github.com/mbolis/quick-vote/httpx"
	"github.com/mbolis/quick-vote/log"
	"github.com/mbolis/quick-vote/routes"
	"github.com/mbolis/quick-vote/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	if cfg.AddUser != "" {
		addUser(db, cfg.AddUser)
		return
	}

	bearerServer := httpx.NewBearerServer(db, cfg)
	handler := routes.Wire(app.New(db, bearerServer, cfg))

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: live result streams hold the response open
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}

func addUser(db *sql.DB, arg string) {
	parts := strings.SplitN(arg, ":", 4)
	if len(parts) < 3 {
		log.Fatal("main.add_user: expected user:pass:role[:display name]")
	}
	displayName := ""
	if len(parts) == 4 {
		displayName = parts[3]
	}

	user, err := store.NewUserStore(db).Create(context.Background(), parts[0], parts[1], parts[2], displayName)
	if err != nil {
		log.Fatal("main.add_user:", err)
	}
	log.Infof("created %s user %q (id=%d)", user.Role, user.Username, user.ID)
}
