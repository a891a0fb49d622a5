// Package report aggregates group-wide financial figures and exports them
// as CSV or Excel workbooks.
package report

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/util"
)

// GroupStatistics is the dashboard snapshot of the group's position.
type GroupStatistics struct {
	TotalMembers        int64 `json:"total_members"`
	ActiveMembers       int64 `json:"active_members"`
	TotalContributions  int64 `json:"total_contributions_cents"`
	TotalLoansIssued    int64 `json:"total_loans_issued_cents"`
	OutstandingLoans    int64 `json:"outstanding_loans_cents"`
	ActiveLoanCount     int64 `json:"active_loan_count"`
	PendingLoanCount    int64 `json:"pending_loan_count"`
	OverdueLoanCount    int64 `json:"overdue_loan_count"`
	TotalFinesIssued    int64 `json:"total_fines_issued_cents"`
	TotalFinesCollected int64 `json:"total_fines_collected_cents"`
	UnpaidFineCount     int64 `json:"unpaid_fine_count"`
	WelfareBalance      int64 `json:"welfare_balance_cents"`
	AvailableFunds      int64 `json:"available_funds_cents"`
}

// Service computes statistics and renders exports.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Statistics aggregates the group's positions. Soft-deleted rows are
// excluded everywhere the model carries the flag.
func (s *Service) Statistics() (*GroupStatistics, error) {
	var st GroupStatistics

	if err := s.DB.Model(&models.User{}).Count(&st.TotalMembers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).Where("is_active = ?", true).Count(&st.ActiveMembers).Error; err != nil {
		return nil, err
	}

	if err := s.sumCents(&models.Contribution{}, "is_deleted = ?", &st.TotalContributions, false); err != nil {
		return nil, err
	}

	active := s.DB.Model(&models.Loan{}).Where("is_deleted = ?", false)
	if err := active.Session(&gorm.Session{}).
		Where("status IN ?", []string{models.LoanStatusActive, models.LoanStatusCompleted, models.LoanStatusExpired}).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&st.TotalLoansIssued).Error; err != nil {
		return nil, err
	}
	if err := active.Session(&gorm.Session{}).
		Where("status = ?", models.LoanStatusActive).
		Select("COALESCE(SUM(remaining_cents), 0)").Scan(&st.OutstandingLoans).Error; err != nil {
		return nil, err
	}
	for status, dst := range map[string]*int64{
		models.LoanStatusActive:  &st.ActiveLoanCount,
		models.LoanStatusPending: &st.PendingLoanCount,
	} {
		if err := s.DB.Model(&models.Loan{}).
			Where("status = ? AND is_deleted = ?", status, false).
			Count(dst).Error; err != nil {
			return nil, err
		}
	}
	if err := s.DB.Model(&models.Loan{}).
		Where("is_overdue = ? AND status = ? AND is_deleted = ?", true, models.LoanStatusActive, false).
		Count(&st.OverdueLoanCount).Error; err != nil {
		return nil, err
	}

	if err := s.sumCents(&models.Fine{}, "is_deleted = ?", &st.TotalFinesIssued, false); err != nil {
		return nil, err
	}
	if err := s.sumCents(&models.Fine{}, "is_paid = ? AND is_deleted = ?", &st.TotalFinesCollected, true, false); err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Fine{}).
		Where("is_paid = ? AND is_deleted = ?", false, false).
		Count(&st.UnpaidFineCount).Error; err != nil {
		return nil, err
	}

	var welfareIn, welfareOut int64
	if err := s.sumCents(&models.WelfareContribution{}, "is_deleted = ?", &welfareIn, false); err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.WelfareExpense{}).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&welfareOut).Error; err != nil {
		return nil, err
	}
	st.WelfareBalance = welfareIn - welfareOut

	// funds held = savings + fines collected - money out on loan
	st.AvailableFunds = st.TotalContributions + st.TotalFinesCollected - st.OutstandingLoans
	return &st, nil
}

func (s *Service) sumCents(model interface{}, where string, dst *int64, args ...interface{}) error {
	return s.DB.Model(model).Where(where, args...).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(dst).Error
}

// MemberRow is one line of the financial report.
type MemberRow struct {
	FullName      string
	Role          string
	IsActive      bool
	Contributions int64
	ActiveLoans   int64
	UnpaidFines   int64
	Welfare       int64
}

// MemberRows assembles the per-member figures backing both export formats.
func (s *Service) MemberRows() ([]MemberRow, error) {
	var users []models.User
	if err := s.DB.Order("full_name").Find(&users).Error; err != nil {
		return nil, err
	}

	rows := make([]MemberRow, 0, len(users))
	for _, u := range users {
		row := MemberRow{FullName: u.FullName, Role: u.Role, IsActive: u.IsActive}
		if err := s.DB.Model(&models.Contribution{}).
			Where("member_id = ? AND is_deleted = ?", u.ID, false).
			Select("COALESCE(SUM(amount_cents), 0)").Scan(&row.Contributions).Error; err != nil {
			return nil, err
		}
		if err := s.DB.Model(&models.Loan{}).
			Where("member_id = ? AND status = ? AND is_deleted = ?", u.ID, models.LoanStatusActive, false).
			Select("COALESCE(SUM(remaining_cents), 0)").Scan(&row.ActiveLoans).Error; err != nil {
			return nil, err
		}
		if err := s.DB.Model(&models.Fine{}).
			Where("member_id = ? AND is_paid = ? AND is_deleted = ?", u.ID, false, false).
			Select("COALESCE(SUM(amount_cents), 0)").Scan(&row.UnpaidFines).Error; err != nil {
			return nil, err
		}
		if err := s.DB.Model(&models.WelfareContribution{}).
			Where("member_id = ? AND is_deleted = ?", u.ID, false).
			Select("COALESCE(SUM(amount_cents), 0)").Scan(&row.Welfare).Error; err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var reportHeader = []string{"Member", "Role", "Status", "Total Contributions", "Active Loan Balance", "Unpaid Fines", "Welfare Contributions"}

// WriteCSV streams the financial report as CSV.
func (s *Service) WriteCSV(w io.Writer) error {
	rows, err := s.MemberRows()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		status := "Active"
		if !r.IsActive {
			status = "Inactive"
		}
		if err := cw.Write([]string{
			r.FullName, r.Role, status,
			util.FormatCents(r.Contributions),
			util.FormatCents(r.ActiveLoans),
			util.FormatCents(r.UnpaidFines),
			util.FormatCents(r.Welfare),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the financial report as an Excel workbook with a
// summary sheet and a per-member sheet.
func (s *Service) WriteXLSX(w io.Writer, groupName string) error {
	st, err := s.Statistics()
	if err != nil {
		return err
	}
	rows, err := s.MemberRows()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)
	f.SetCellValue(summary, "A1", groupName+" Financial Report")
	f.SetCellValue(summary, "A2", "Generated: "+time.Now().Format("2006-01-02 15:04"))
	summaryRows := [][2]interface{}{
		{"Total members", st.TotalMembers},
		{"Active members", st.ActiveMembers},
		{"Total contributions", util.FormatCurrency(st.TotalContributions)},
		{"Loans issued", util.FormatCurrency(st.TotalLoansIssued)},
		{"Outstanding loan balance", util.FormatCurrency(st.OutstandingLoans)},
		{"Active loans", st.ActiveLoanCount},
		{"Overdue loans", st.OverdueLoanCount},
		{"Fines collected", util.FormatCurrency(st.TotalFinesCollected)},
		{"Welfare balance", util.FormatCurrency(st.WelfareBalance)},
		{"Available funds", util.FormatCurrency(st.AvailableFunds)},
	}
	for i, r := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		f.SetCellValue(summary, cell, r[0])
		cell, _ = excelize.CoordinatesToCellName(2, i+4)
		f.SetCellValue(summary, cell, r[1])
	}

	const members = "Members"
	if _, err := f.NewSheet(members); err != nil {
		return err
	}
	for i, h := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(members, cell, h)
	}
	for i, r := range rows {
		status := "Active"
		if !r.IsActive {
			status = "Inactive"
		}
		values := []interface{}{
			r.FullName, r.Role, status,
			util.FormatCents(r.Contributions),
			util.FormatCents(r.ActiveLoans),
			util.FormatCents(r.UnpaidFines),
			util.FormatCents(r.Welfare),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(members, cell, v)
		}
	}

	return f.Write(w)
}
