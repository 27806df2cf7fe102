package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mbolis/quick-vote/model"
)

type VoteStore struct {
	db *sql.DB

	// when set, ballots cast after a poll's end date are rejected;
	// otherwise status is the only gate
	enforceEndDate bool
}

func NewVoteStore(db *sql.DB, enforceEndDate bool) *VoteStore {
	return &VoteStore{db, enforceEndDate}
}

// Cast writes the voter's ballot for a poll. The ballot must pick
// exactly one listed candidate for every role of the poll. The
// one-ballot-per-voter rule rides on the (poll_id, user_id) unique
// constraint, so two concurrent submissions cannot both get through:
// the loser surfaces as ErrAlreadyVoted.
func (s *VoteStore) Cast(ctx context.Context, pollId int, voter model.User, choices []model.Choice) (model.Vote, error) {
	poll, err := getPoll(ctx, s.db, pollId)
	if err != nil {
		return model.Vote{}, err
	}

	if poll.Status != model.PollActive {
		return model.Vote{}, ErrPollClosed
	}
	if s.enforceEndDate && poll.EndDate != nil && time.Now().After(*poll.EndDate) {
		return model.Vote{}, ErrPollEnded
	}

	ballot, err := orderBallot(poll, choices)
	if err != nil {
		return model.Vote{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Vote{}, err
	}
	defer tx.Rollback()

	vote := model.Vote{
		PollID:   pollId,
		UserID:   voter.ID,
		UserName: voter.DisplayName,
		VotedAt:  time.Now(),
		Choices:  ballot,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO vote (poll_id, user_id, user_name, voted_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		vote.PollID,
		vote.UserID,
		vote.UserName,
		vote.VotedAt,
	).Scan(&vote.ID)
	if isUniqueViolation(err) {
		return model.Vote{}, ErrAlreadyVoted
	}
	if err != nil {
		return model.Vote{}, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vote_choice (vote_id, position, role_name, candidate_name)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return model.Vote{}, err
	}
	defer stmt.Close()

	for i, c := range vote.Choices {
		_, err = stmt.ExecContext(ctx, vote.ID, i, c.RoleName, c.CandidateName)
		if err != nil {
			return model.Vote{}, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return model.Vote{}, err
	}

	return vote, nil
}

// orderBallot checks the ballot covers every poll role with a listed
// candidate, and returns the choices rearranged into poll role order.
func orderBallot(poll model.Poll, choices []model.Choice) ([]model.Choice, error) {
	if len(choices) != len(poll.Roles) {
		return nil, validationErrorf("ballot has %d selections, poll has %d roles", len(choices), len(poll.Roles))
	}

	byRole := make(map[string]string, len(choices))
	for _, c := range choices {
		if _, dup := byRole[c.RoleName]; dup {
			return nil, validationErrorf("more than one selection for role %q", c.RoleName)
		}
		byRole[c.RoleName] = c.CandidateName
	}

	ballot := make([]model.Choice, 0, len(poll.Roles))
	for _, role := range poll.Roles {
		candidateName, ok := byRole[role.Name]
		if !ok {
			return nil, validationErrorf("missing selection for role %q", role.Name)
		}

		found := false
		for _, c := range role.Candidates {
			if c.Name == candidateName {
				found = true
				break
			}
		}
		if !found {
			return nil, validationErrorf("no candidate %q for role %q", candidateName, role.Name)
		}

		ballot = append(ballot, model.Choice{RoleName: role.Name, CandidateName: candidateName})
	}
	return ballot, nil
}

// ForPoll returns every ballot cast on a poll, oldest first.
func (s *VoteStore) ForPoll(ctx context.Context, pollId int) ([]model.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.poll_id, v.user_id, v.user_name, v.voted_at, c.role_name, c.candidate_name
		FROM vote v
		INNER JOIN vote_choice c ON (c.vote_id = v.id)
		WHERE v.poll_id = ?
		ORDER BY v.id, c.position`,
		pollId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []model.Vote{}
	for rows.Next() {
		v := model.Vote{}
		c := model.Choice{}
		err = rows.Scan(&v.ID, &v.PollID, &v.UserID, &v.UserName, &v.VotedAt, &c.RoleName, &c.CandidateName)
		if err != nil {
			return nil, err
		}

		lastIdx := len(votes) - 1
		if lastIdx > -1 && votes[lastIdx].ID == v.ID {
			votes[lastIdx].Choices = append(votes[lastIdx].Choices, c)
		} else {
			v.Choices = []model.Choice{c}
			votes = append(votes, v)
		}
	}
	return votes, rows.Err()
}

// ByVoter returns the voter's own ballot on a poll, or ErrNotFound.
func (s *VoteStore) ByVoter(ctx context.Context, pollId, userId int) (model.Vote, error) {
	v := model.Vote{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, poll_id, user_id, user_name, voted_at
		FROM vote
		WHERE poll_id = ? AND user_id = ?`,
		pollId,
		userId,
	).Scan(&v.ID, &v.PollID, &v.UserID, &v.UserName, &v.VotedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vote{}, ErrNotFound
	}
	if err != nil {
		return model.Vote{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role_name, candidate_name
		FROM vote_choice
		WHERE vote_id = ?
		ORDER BY position`,
		v.ID,
	)
	if err != nil {
		return model.Vote{}, err
	}
	defer rows.Close()

	for rows.Next() {
		c := model.Choice{}
		err = rows.Scan(&c.RoleName, &c.CandidateName)
		if err != nil {
			return model.Vote{}, err
		}
		v.Choices = append(v.Choices, c)
	}
	return v, rows.Err()
}
