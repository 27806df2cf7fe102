package tally

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV renders a tally in the report shape downstream consumers
// already parse: a Role,Candidate,Votes,Percentage header, one row per
// candidate in poll order, a "Total for <role>" row after each role
// and a final TOTAL VOTERS row.
func WriteCSV(w io.Writer, result Result) error {
	out := csv.NewWriter(w)

	err := out.Write([]string{"Role", "Candidate", "Votes", "Percentage"})
	if err != nil {
		return err
	}

	for _, role := range result.Roles {
		for _, c := range role.Candidates {
			err = out.Write([]string{
				role.Name,
				c.Name,
				strconv.Itoa(c.Votes),
				strconv.FormatFloat(c.Percentage, 'f', 2, 64),
			})
			if err != nil {
				return err
			}
		}

		err = out.Write([]string{"Total for " + role.Name, "", strconv.Itoa(role.Total), ""})
		if err != nil {
			return err
		}
	}

	err = out.Write([]string{"TOTAL VOTERS", "", strconv.Itoa(result.TotalVoters), ""})
	if err != nil {
		return err
	}

	out.Flush()
	return out.Error()
}
