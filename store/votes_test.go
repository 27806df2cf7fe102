package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mbolis/quick-vote/model"
	"github.com/mbolis/quick-vote/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVote(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db, false)

	poll, err := polls.Create(context.Background(), electionPoll())
	require.NoError(t, err)
	voter := newTestUser(t, db, "voter.x")

	// selections arrive in arbitrary order
	vote, err := votes.Cast(context.Background(), poll.ID, voter, []model.Choice{
		{RoleName: "Treasurer", CandidateName: "D"},
		{RoleName: "President", CandidateName: "A"},
	})
	require.NoError(t, err)

	assert.NotZero(t, vote.ID)
	assert.Equal(t, poll.ID, vote.PollID)
	assert.Equal(t, voter.ID, vote.UserID)
	assert.Equal(t, voter.DisplayName, vote.UserName)
	assert.False(t, vote.VotedAt.IsZero())
	// ballot is stored in poll role order
	assert.Equal(t, []model.Choice{
		{RoleName: "President", CandidateName: "A"},
		{RoleName: "Treasurer", CandidateName: "D"},
	}, vote.Choices)

	got, err := votes.ByVoter(context.Background(), poll.ID, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, vote.Choices, got.Choices)
}

func TestCastBallotValidation(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db, false)

	poll, err := polls.Create(context.Background(), electionPoll())
	require.NoError(t, err)
	voter := newTestUser(t, db, "voter.x")

	tests := []struct {
		name    string
		choices []model.Choice
	}{
		{"empty ballot", nil},
		{"missing role", []model.Choice{
			{RoleName: "President", CandidateName: "A"},
		}},
		{"unknown role", []model.Choice{
			{RoleName: "President", CandidateName: "A"},
			{RoleName: "Secretary", CandidateName: "C"},
		}},
		{"duplicate role", []model.Choice{
			{RoleName: "President", CandidateName: "A"},
			{RoleName: "President", CandidateName: "B"},
		}},
		{"unknown candidate", []model.Choice{
			{RoleName: "President", CandidateName: "Z"},
			{RoleName: "Treasurer", CandidateName: "C"},
		}},
		{"candidate from another role", []model.Choice{
			{RoleName: "President", CandidateName: "C"},
			{RoleName: "Treasurer", CandidateName: "A"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := votes.Cast(context.Background(), poll.ID, voter, tt.choices)

			var verr store.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// rejected ballots never touch the store
	cast, err := votes.ForPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Empty(t, cast)
}

func TestCastTwiceRejected(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db, false)

	poll, err := polls.Create(context.Background(), electionPoll())
	require.NoError(t, err)
	voter := newTestUser(t, db, "voter.x")

	first, err := votes.Cast(context.Background(), poll.ID, voter, []model.Choice{
		{RoleName: "President", CandidateName: "A"},
		{RoleName: "Treasurer", CandidateName: "C"},
	})
	require.NoError(t, err)

	_, err = votes.Cast(context.Background(), poll.ID, voter, []model.Choice{
		{RoleName: "President", CandidateName: "B"},
		{RoleName: "Treasurer", CandidateName: "D"},
	})
	assert.ErrorIs(t, err, store.ErrAlreadyVoted)

	// the original ballot is untouched
	got, err := votes.ByVoter(context.Background(), poll.ID, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, first.Choices, got.Choices)

	cast, err := votes.ForPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Len(t, cast, 1)
}

func TestCastConcurrentDoubleSubmission(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db, false)

	poll, err := polls.Create(context.Background(), electionPoll())
	require.NoError(t, err)
	voter := newTestUser(t, db, "voter.x")

	const attempts = 4
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = votes.Cast(context.Background(), poll.ID, voter, fullBallot(poll))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, store.ErrAlreadyVoted)
		}
	}
	assert.Equal(t, 1, succeeded)

	cast, err := votes.ForPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Len(t, cast, 1)
}

func TestCastOnClosedPoll(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db, false)

	poll, err := polls.Create(context.Background(), electionPoll())
	require.NoError(t, err)
	_, err = polls.Close(context.Background(), poll.ID)
	require.NoError(t, err)

	voter := newTestUser(t, db, "voter.x")
	_, err = votes.Cast(context.Background(), poll.ID, voter, fullBallot(poll))
	assert.ErrorIs(t, err, store.ErrPollClosed)
}

func TestCastOnMissingPoll(t *testing.T) {
	db := newTestDB(t)
	votes := store.NewVoteStore(db, false)

	voter := newTestUser(t, db, "voter.x")
	_, err := votes.Cast(context.Background(), 42, voter, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCastAfterEndDate(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)

	ended := electionPoll()
	endDate := time.Now().Add(-time.Hour)
	ended.EndDate = &endDate

	poll, err := polls.Create(context.Background(), ended)
	require.NoError(t, err)
	voter := newTestUser(t, db, "voter.x")

	t.Run("enforced", func(t *testing.T) {
		votes := store.NewVoteStore(db, true)
		_, err := votes.Cast(context.Background(), poll.ID, voter, fullBallot(poll))
		assert.ErrorIs(t, err, store.ErrPollEnded)
	})

	t.Run("status is the only gate", func(t *testing.T) {
		votes := store.NewVoteStore(db, false)
		_, err := votes.Cast(context.Background(), poll.ID, voter, fullBallot(poll))
		assert.NoError(t, err)
	})
}

func TestByVoterNotFound(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db, false)

	poll, err := polls.Create(context.Background(), electionPoll())
	require.NoError(t, err)
	voter := newTestUser(t, db, "voter.x")

	_, err = votes.ByVoter(context.Background(), poll.ID, voter.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestForPoll(t *testing.T) {
	db := newTestDB(t)
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db, false)

	poll, err := polls.Create(context.Background(), electionPoll())
	require.NoError(t, err)

	x := newTestUser(t, db, "voter.x")
	y := newTestUser(t, db, "voter.y")
	_, err = votes.Cast(context.Background(), poll.ID, x, []model.Choice{
		{RoleName: "President", CandidateName: "A"},
		{RoleName: "Treasurer", CandidateName: "C"},
	})
	require.NoError(t, err)
	_, err = votes.Cast(context.Background(), poll.ID, y, []model.Choice{
		{RoleName: "President", CandidateName: "B"},
		{RoleName: "Treasurer", CandidateName: "C"},
	})
	require.NoError(t, err)

	cast, err := votes.ForPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	require.Len(t, cast, 2)
	assert.Equal(t, x.ID, cast[0].UserID)
	assert.Equal(t, y.ID, cast[1].UserID)
	assert.Len(t, cast[0].Choices, 2)
	assert.Len(t, cast[1].Choices, 2)
}
