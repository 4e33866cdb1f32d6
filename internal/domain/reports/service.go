package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Balances(ctx context.Context) ([]BalanceRow, error) {
	return s.Store.BalanceRows(ctx)
}

func (s *Service) Usage(ctx context.Context, year int) ([]UsageRow, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	return s.Store.UsageRows(ctx, year)
}

func (s *Service) Dashboard(ctx context.Context) (DashboardCounts, error) {
	return s.Store.Dashboard(ctx, time.Now())
}

// BalancePDF renders the company-wide balance sheet as a PDF document.
func (s *Service) BalancePDF(ctx context.Context) ([]byte, error) {
	balances, err := s.Store.BalanceRows(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Balances")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	headers := []string{"Name", "Role", "Annual", "Taken", "Left", "Medical", "Taken", "Left", "CF", "CF Used", "CF Left"}
	widths := []float64{70, 25, 18, 18, 18, 18, 18, 18, 18, 18, 18}

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, b := range balances {
		cells := []string{
			b.Name, b.Role,
			fmt.Sprint(b.AnnualAllocation), fmt.Sprint(b.AnnualTaken), fmt.Sprint(b.AnnualRemaining),
			fmt.Sprint(b.MedicalAllocation), fmt.Sprint(b.MedicalTaken), fmt.Sprint(b.MedicalRemaining),
			fmt.Sprint(b.CarryforwardGranted), fmt.Sprint(b.CarryforwardTaken), fmt.Sprint(b.CarryforwardAvailable),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
