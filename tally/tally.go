// Package tally derives per-candidate counts and percentages from cast
// ballots. It is pure: the same computation backs the admin results
// view, the live stream and the CSV export.
package tally

import (
	"math"

	"github.com/mbolis/quick-vote/model"
)

type Result struct {
	TotalVoters int          `json:"totalVoters"`
	Roles       []RoleResult `json:"roles"`
}

type RoleResult struct {
	Name       string            `json:"roleName"`
	Total      int               `json:"total"`
	Candidates []CandidateResult `json:"candidates"`
}

type CandidateResult struct {
	Name       string  `json:"name"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Count tallies the given ballots against the poll's role and
// candidate lists. Output preserves poll order; candidates are never
// reordered by score. A role with zero ballots gets all-zero
// percentages.
func Count(poll model.Poll, votes []model.Vote) Result {
	counts := make(map[model.Choice]int)
	roleTotals := make(map[string]int)
	for _, v := range votes {
		for _, c := range v.Choices {
			counts[c]++
			roleTotals[c.RoleName]++
		}
	}

	result := Result{
		TotalVoters: len(votes),
		Roles:       make([]RoleResult, 0, len(poll.Roles)),
	}
	for _, role := range poll.Roles {
		rr := RoleResult{
			Name:       role.Name,
			Total:      roleTotals[role.Name],
			Candidates: make([]CandidateResult, 0, len(role.Candidates)),
		}
		for _, c := range role.Candidates {
			n := counts[model.Choice{RoleName: role.Name, CandidateName: c.Name}]
			rr.Candidates = append(rr.Candidates, CandidateResult{
				Name:       c.Name,
				Votes:      n,
				Percentage: percentage(n, rr.Total),
			})
		}
		result.Roles = append(result.Roles, rr)
	}
	return result
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
