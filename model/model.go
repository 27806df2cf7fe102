package model

import "time"

type PollStatus string

const (
	PollActive PollStatus = "active"
	PollClosed PollStatus = "closed"
)

type Poll struct {
	ID          int        `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Status      PollStatus `json:"status,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	Roles       []PollRole `json:"roles,omitempty"`
}

// PollRole is a position being voted on. Roles and their candidate
// lists are fixed at poll creation and keep their submitted order.
type PollRole struct {
	Name       string      `json:"roleName"`
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Name string `json:"name"`
}

// Vote is one voter's complete ballot for one poll: exactly one
// candidate choice per role. Never mutated once written.
type Vote struct {
	ID       int       `json:"id,omitempty"`
	PollID   int       `json:"pollId"`
	UserID   int       `json:"userId"`
	UserName string    `json:"userName"`
	VotedAt  time.Time `json:"votedAt"`
	Choices  []Choice  `json:"votes"`
}

type Choice struct {
	RoleName      string `json:"roleName"`
	CandidateName string `json:"candidateName"`
}

type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}
