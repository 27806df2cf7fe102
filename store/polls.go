package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mbolis/quick-vote/model"
)

type PollStore struct {
	db *sql.DB
}

func NewPollStore(db *sql.DB) *PollStore {
	return &PollStore{db}
}

// Create persists a new active poll with its roles and candidates, in
// submission order, and returns it with the assigned id. Roles and
// candidates are immutable from here on: there is no update path.
func (s *PollStore) Create(ctx context.Context, poll model.Poll) (model.Poll, error) {
	err := validatePoll(poll)
	if err != nil {
		return model.Poll{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Poll{}, err
	}
	defer tx.Rollback()

	poll.Status = model.PollActive
	poll.CreatedAt = time.Now()
	poll.ClosedAt = nil

	err = tx.QueryRowContext(ctx, `
		INSERT INTO poll (title, description, status, end_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		poll.Title,
		poll.Description,
		poll.Status,
		poll.EndDate,
		poll.CreatedAt,
	).Scan(&poll.ID)
	if err != nil {
		return model.Poll{}, err
	}

	roleStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO poll_role (poll_id, position, name)
		VALUES (?, ?, ?)
		RETURNING id`)
	if err != nil {
		return model.Poll{}, err
	}
	defer roleStmt.Close()

	candidateStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candidate (role_id, position, name)
		VALUES (?, ?, ?)`)
	if err != nil {
		return model.Poll{}, err
	}
	defer candidateStmt.Close()

	for i, role := range poll.Roles {
		var roleId int
		err = roleStmt.QueryRowContext(ctx, poll.ID, i, role.Name).Scan(&roleId)
		if err != nil {
			return model.Poll{}, err
		}

		for j, c := range role.Candidates {
			_, err = candidateStmt.ExecContext(ctx, roleId, j, c.Name)
			if err != nil {
				return model.Poll{}, err
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return model.Poll{}, err
	}

	return poll, nil
}

func validatePoll(poll model.Poll) error {
	if strings.TrimSpace(poll.Title) == "" {
		return validationErrorf("poll title must not be blank")
	}
	if len(poll.Roles) == 0 {
		return validationErrorf("poll must have at least one role")
	}

	roleNames := make(map[string]bool, len(poll.Roles))
	for _, role := range poll.Roles {
		if strings.TrimSpace(role.Name) == "" {
			return validationErrorf("role name must not be blank")
		}
		if roleNames[role.Name] {
			return validationErrorf("duplicate role %q", role.Name)
		}
		roleNames[role.Name] = true

		if len(role.Candidates) == 0 {
			return validationErrorf("role %q must have at least one candidate", role.Name)
		}
		candidateNames := make(map[string]bool, len(role.Candidates))
		for _, c := range role.Candidates {
			if strings.TrimSpace(c.Name) == "" {
				return validationErrorf("role %q has a blank candidate name", role.Name)
			}
			if candidateNames[c.Name] {
				return validationErrorf("duplicate candidate %q for role %q", c.Name, role.Name)
			}
			candidateNames[c.Name] = true
		}
	}
	return nil
}

func (s *PollStore) Get(ctx context.Context, id int) (model.Poll, error) {
	return getPoll(ctx, s.db, id)
}

// List returns polls with their full role and candidate lists, newest
// first. A non-empty status filters the listing.
func (s *PollStore) List(ctx context.Context, status model.PollStatus) ([]model.Poll, error) {
	query := `
		SELECT id, title, description, status, end_date, created_at, closed_at
		FROM poll`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := []model.Poll{}
	for rows.Next() {
		p := model.Poll{}
		err = rows.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.EndDate, &p.CreatedAt, &p.ClosedAt)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range polls {
		polls[i].Roles, err = getPollRoles(ctx, s.db, polls[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return polls, nil
}

// Close flips the poll to closed and stamps closed_at. Closing an
// already-closed poll just rewrites the timestamp.
func (s *PollStore) Close(ctx context.Context, id int) (model.Poll, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll
		SET status = ?, closed_at = ?
		WHERE id = ?`,
		model.PollClosed,
		time.Now(),
		id,
	)
	if err != nil {
		return model.Poll{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Poll{}, err
	}
	if n < 1 {
		return model.Poll{}, ErrNotFound
	}

	return getPoll(ctx, s.db, id)
}

// Delete removes the poll together with its votes, candidates and
// roles in a single transaction, so a failure partway leaves no
// orphaned votes behind.
func (s *PollStore) Delete(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM vote_choice
		WHERE vote_id IN (SELECT id FROM vote WHERE poll_id = ?)`,
		id,
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM vote WHERE poll_id = ?`, id)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM candidate
		WHERE role_id IN (SELECT id FROM poll_role WHERE poll_id = ?)`,
		id,
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM poll_role WHERE poll_id = ?`, id)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM poll WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}

	return tx.Commit()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPoll(ctx context.Context, q querier, id int) (poll model.Poll, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT id, title, description, status, end_date, created_at, closed_at
		FROM poll
		WHERE id = ?`,
		id,
	).Scan(&poll.ID, &poll.Title, &poll.Description, &poll.Status, &poll.EndDate, &poll.CreatedAt, &poll.ClosedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Poll{}, ErrNotFound
	}
	if err != nil {
		return model.Poll{}, err
	}

	poll.Roles, err = getPollRoles(ctx, q, id)
	if err != nil {
		return model.Poll{}, err
	}
	return poll, nil
}

func getPollRoles(ctx context.Context, q querier, pollId int) ([]model.PollRole, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT r.name, c.name
		FROM poll_role r
		INNER JOIN candidate c ON (c.role_id = r.id)
		WHERE r.poll_id = ?
		ORDER BY r.position, c.position`,
		pollId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []model.PollRole{}
	for rows.Next() {
		var roleName, candidateName string
		err = rows.Scan(&roleName, &candidateName)
		if err != nil {
			return nil, err
		}

		lastIdx := len(roles) - 1
		if lastIdx > -1 && roles[lastIdx].Name == roleName {
			roles[lastIdx].Candidates = append(roles[lastIdx].Candidates, model.Candidate{Name: candidateName})
		} else {
			roles = append(roles, model.PollRole{
				Name:       roleName,
				Candidates: []model.Candidate{{Name: candidateName}},
			})
		}
	}
	return roles, rows.Err()
}
