package core

import (
	"context"
	"io"
	"time"

	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/report"
)

var viewHeader = []string{"name", "email", "dept", "role", "currency", "balance", "total", "last_transaction"}

// Table converts views to a report table.
func Table(views []EmployeeView) report.Table {
	t := report.Table{Header: viewHeader, Rows: make([][]string, 0, len(views))}
	for _, v := range views {
		last := ""
		if v.LastTransaction != nil {
			last = v.LastTransaction.Format(time.RFC3339)
		}
		t.Rows = append(t.Rows, []string{
			v.Name,
			v.Email,
			v.Department,
			v.Role,
			v.Currency,
			v.Balance.StringFixed(ledger.BalancePlaces),
			v.Total.StringFixed(2),
			last,
		})
	}
	return t
}

// Export writes the Read view of q to w as csv, xlsx or a text table.
func (s *Service) Export(ctx context.Context, q Query, format string, w io.Writer) error {
	views, err := s.Read(ctx, q)
	if err != nil {
		return err
	}
	return report.Write(w, format, Table(views))
}
