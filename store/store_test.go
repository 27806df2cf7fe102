package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mbolis/quick-vote/config"
	"github.com/mbolis/quick-vote/database"
	"github.com/mbolis/quick-vote/model"
	"github.com/mbolis/quick-vote/store"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUser(t *testing.T, db *sql.DB, username string) model.User {
	t.Helper()

	user, err := store.NewUserStore(db).Create(context.Background(), username, "s3cret", "member", "")
	require.NoError(t, err)
	return user
}

func electionPoll() model.Poll {
	return model.Poll{
		Title:       "2026 Election",
		Description: "Annual committee election",
		Roles: []model.PollRole{
			{Name: "President", Candidates: []model.Candidate{{Name: "A"}, {Name: "B"}}},
			{Name: "Treasurer", Candidates: []model.Candidate{{Name: "C"}, {Name: "D"}, {Name: "E"}}},
		},
	}
}

func fullBallot(poll model.Poll) []model.Choice {
	choices := make([]model.Choice, 0, len(poll.Roles))
	for _, role := range poll.Roles {
		choices = append(choices, model.Choice{
			RoleName:      role.Name,
			CandidateName: role.Candidates[0].Name,
		})
	}
	return choices
}
