// internal/app/service/reconcile/import.go
package reconcile

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/ibbtech/memberhub/internal/app/system/csvutil"
	"github.com/ibbtech/memberhub/internal/domain/faults"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	Created  int                `json:"created"`
	Skipped  int                `json:"skipped"`
	Rejected []csvutil.RowError `json:"rejected,omitempty"`
}

// ImportCSV creates local-only member records from a spreadsheet export.
// No identities are registered; imported people sign up later through an
// invite. Rows with an email that already exists are skipped, not
// errors: re-importing the same file is safe.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	result, err := csvutil.ParseMemberCSV(r, csvutil.DefaultParseOptions())
	if err != nil {
		return nil, faults.Validation(err.Error())
	}

	summary := &ImportSummary{Rejected: result.Errors}
	for _, row := range result.Rows {
		if row.Email != "" {
			exists, err := s.members.EmailExists(ctx, row.Email)
			if err != nil {
				return summary, err
			}
			if exists {
				summary.Skipped++
				continue
			}
		}

		m := models.Member{
			Nome:     row.Nome,
			Email:    row.Email,
			Telefone: row.Telefone,
			Status:   row.Status,
		}
		if _, err := s.members.Create(ctx, m); err != nil {
			s.log.Warn("csv row rejected at persistence",
				zap.String("nome", row.Nome),
				zap.Error(err))
			summary.Rejected = append(summary.Rejected, csvutil.RowError{
				Nome: row.Nome, Email: row.Email, Reason: err.Error(),
			})
			continue
		}
		summary.Created++
	}
	return summary, nil
}
