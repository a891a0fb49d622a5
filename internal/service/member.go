package service

import (
	"errors"
	"strings"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/permission"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MemberService manages member accounts. Deactivation is archival: the
// member's contributions, loans and fines are left untouched.
type MemberService struct {
	effects
	bcryptCost int
	validate   *validator.Validate
}

func NewMemberService(db *gorm.DB, bcryptCost int, activity ActivityLogger, logger *zap.Logger) *MemberService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 12
	}
	return &MemberService{
		effects:    effects{db: db, activity: activity, logger: logger},
		bcryptCost: bcryptCost,
		validate:   validator.New(),
	}
}

// MemberInput is the validated input for Create.
type MemberInput struct {
	Username string `validate:"required,min=4,max=100"`
	FullName string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,min=10,max=20"`
	Role     string `validate:"required,oneof=Admin Chairman Treasurer Secretary Member"`
	Password string `validate:"required,min=6"`
}

// Create registers a new member account. Admin only.
func (s *MemberService) Create(actor *models.User, in MemberInput) (*models.User, []string, error) {
	if permission.Role(actor.Role) != permission.RoleAdmin {
		return nil, nil, &PermissionError{Action: "manage_members"}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid member: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := models.User{
		Username:     strings.TrimSpace(in.Username),
		FullName:     in.FullName,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        in.Phone,
		Role:         in.Role,
		PasswordHash: string(hash),
		IsActive:     true,
		DateJoined:   time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?) OR LOWER(email) = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("username or email already in use")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "created", "member", user.ID, user.FullName+" ("+user.Role+")")
	return &user, warnings, nil
}

// SetActive activates or deactivates a member. Financial history is never
// cascaded away.
func (s *MemberService) SetActive(actor *models.User, memberID uint, active bool) (*models.User, []string, error) {
	if permission.Role(actor.Role) != permission.RoleAdmin {
		return nil, nil, &PermissionError{Action: "manage_members"}
	}

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "member", ID: memberID}
			}
			return err
		}
		if user.IsActive == active {
			if active {
				return alreadyDonef("member is already active")
			}
			return alreadyDonef("member is already deactivated")
		}
		user.IsActive = active
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, nil, err
	}

	action := "deactivated"
	if active {
		action = "reactivated"
	}
	var warnings []string
	warnings = s.record(warnings, actor, action, "member", user.ID, user.FullName)
	return &user, warnings, nil
}

// MemberSummary is a member's financial standing at a glance.
type MemberSummary struct {
	MemberID             uint  `json:"member_id"`
	TotalContributions   int64 `json:"total_contributions_cents"`
	ActiveLoans          int   `json:"active_loans"`
	ActiveLoanBalance    int64 `json:"active_loan_balance_cents"`
	UnpaidFines          int   `json:"unpaid_fines"`
	UnpaidFineTotal      int64 `json:"unpaid_fine_total_cents"`
	WelfareContributions int64 `json:"welfare_contributions_cents"`
}

// Summary aggregates a member's contributions, active loan balances and
// unpaid fines, ignoring soft-deleted rows.
func (s *MemberService) Summary(memberID uint) (*MemberSummary, error) {
	var user models.User
	if err := s.db.First(&user, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "member", ID: memberID}
		}
		return nil, err
	}

	out := MemberSummary{MemberID: memberID}

	if err := s.db.Model(&models.Contribution{}).
		Where("member_id = ? AND is_deleted = ?", memberID, false).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&out.TotalContributions).Error; err != nil {
		return nil, err
	}

	var activeLoans []models.Loan
	if err := s.db.
		Where("member_id = ? AND status = ? AND is_deleted = ?", memberID, models.LoanStatusActive, false).
		Find(&activeLoans).Error; err != nil {
		return nil, err
	}
	out.ActiveLoans = len(activeLoans)
	for _, l := range activeLoans {
		out.ActiveLoanBalance += l.RemainingCents
	}

	var unpaid []models.Fine
	if err := s.db.
		Where("member_id = ? AND is_paid = ? AND is_deleted = ?", memberID, false, false).
		Find(&unpaid).Error; err != nil {
		return nil, err
	}
	out.UnpaidFines = len(unpaid)
	for _, f := range unpaid {
		out.UnpaidFineTotal += f.AmountCents
	}

	if err := s.db.Model(&models.WelfareContribution{}).
		Where("member_id = ? AND is_deleted = ?", memberID, false).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&out.WelfareContributions).Error; err != nil {
		return nil, err
	}

	return &out, nil
}
