package models

import "time"

// Loan statuses. Pending is the initial state; Rejected, Completed and
// Expired are terminal.
const (
	LoanStatusPending   = "Pending"
	LoanStatusActive    = "Active"
	LoanStatusCompleted = "Completed"
	LoanStatusRejected  = "Rejected"
	LoanStatusExpired   = "Expired"
)

const (
	LoanTypeInternal = "Internal"
	LoanTypeExternal = "External"
)

const (
	LoanCategoryShortTerm = "Short-term"
	LoanCategoryLongTerm  = "Long-term"
	LoanCategoryEmergency = "Emergency"
)

// Loan is one borrowing, internal (member) or external (guaranteed outsider).
type Loan struct {
	ID              uint    `gorm:"primaryKey"`
	MemberID        *uint   `gorm:"index"` // nil for external loans
	AmountCents     int64   `gorm:"not null"`
	RemainingCents  int64   `gorm:"not null"`
	TotalRepayCents int64   `gorm:"not null"`
	InterestRate    float64 `gorm:"default:20"` // percent
	Status          string  `gorm:"size:20;index;default:Pending"`
	ApplicationDate time.Time
	ApprovalDate    *time.Time
	DueDate         *time.Time `gorm:"index"`
	ApprovedByID    *uint
	Purpose         string `gorm:"type:text;not null"`
	DurationMonths  int    `gorm:"default:3"`

	Category      string `gorm:"size:20;default:Short-term"`
	EmergencyType string `gorm:"size:50"`
	RepaymentMode string `gorm:"size:20;default:monthly"` // weekly, monthly, lump_sum

	// overdue tracking; orthogonal to Status
	GracePeriodDays int     `gorm:"default:7"`
	LateFeePercent  float64 `gorm:"default:5"`
	IsOverdue       bool    `gorm:"index;default:false"`
	OverdueSince    *time.Time
	AutoFineApplied bool `gorm:"default:false"`

	Occupation         string `gorm:"size:100"`
	MonthlyIncomeCents int64

	// external borrower details
	Type            string `gorm:"size:10;index;default:Internal"`
	GuarantorID     *uint  `gorm:"index"`
	KRAPin          string `gorm:"size:11"`
	IDNumber        string `gorm:"size:10"`
	BorrowerPhone   string `gorm:"size:15"`
	BorrowerName    string `gorm:"size:100"`
	BorrowerAddress string `gorm:"type:text"`

	ApprovalNotes string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	SoftDelete

	Member     *User           `gorm:"foreignKey:MemberID"`
	Approver   *User           `gorm:"foreignKey:ApprovedByID"`
	Guarantor  *User           `gorm:"foreignKey:GuarantorID"`
	Repayments []LoanRepayment `gorm:"foreignKey:LoanID"`
}

// Resolved reports whether the loan is in a terminal state.
func (l *Loan) Resolved() bool {
	switch l.Status {
	case LoanStatusCompleted, LoanStatusRejected, LoanStatusExpired:
		return true
	}
	return false
}

// LoanRepayment is an immutable, append-only record of one payment against a
// loan. The sum of repayments funds the decrease in the loan's RemainingCents.
type LoanRepayment struct {
	ID           uint      `gorm:"primaryKey"`
	LoanID       uint      `gorm:"index;not null"`
	AmountCents  int64     `gorm:"not null"`
	DatePaid     time.Time `gorm:"index"`
	RecordedByID uint      `gorm:"not null"`
	CreatedAt    time.Time

	Recorder User `gorm:"foreignKey:RecordedByID"`
}
