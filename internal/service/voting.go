package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/permission"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VotingService runs proposals and votes: Draft -> Active -> Closed
// (-> Implemented). A member gets exactly one immutable vote per proposal,
// accepted only inside the voting window [start, end).
type VotingService struct {
	effects
	validate *validator.Validate
}

func NewVotingService(db *gorm.DB, notifier NotificationSink, activity ActivityLogger, logger *zap.Logger) *VotingService {
	return &VotingService{
		effects:  effects{db: db, notifier: notifier, activity: activity, logger: logger},
		validate: validator.New(),
	}
}

// ProposalInput is the validated input for CreateProposal.
type ProposalInput struct {
	Title                string    `validate:"required,min=5,max=200"`
	Description          string    `validate:"required,min=20,max=1000"`
	Type                 string    `validate:"required,oneof=policy financial member project"`
	VotingStart          time.Time `validate:"required"`
	VotingEnd            time.Time `validate:"required"`
	MinimumParticipation float64   `validate:"gte=1,lte=100"`
}

// CreateProposal drafts a new proposal. Any active member may propose.
func (s *VotingService) CreateProposal(actor *models.User, in ProposalInput) (*models.VotingProposal, []string, error) {
	if !actor.IsActive {
		return nil, nil, &PermissionError{Action: "create_proposal"}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid proposal: %v", err)
	}
	if !in.VotingStart.Before(in.VotingEnd) {
		return nil, nil, validationf("voting start must be before voting end")
	}

	p := models.VotingProposal{
		Title:                in.Title,
		Description:          in.Description,
		Type:                 in.Type,
		CreatedByID:          actor.ID,
		CreatedDate:          time.Now(),
		VotingStart:          in.VotingStart,
		VotingEnd:            in.VotingEnd,
		Status:               models.ProposalStatusDraft,
		RequiresMajority:     true,
		MinimumParticipation: in.MinimumParticipation,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "created", "proposal", p.ID, p.Title)
	return &p, warnings, nil
}

// Activate opens a Draft proposal for voting and announces it to all active
// members.
func (s *VotingService) Activate(actor *models.User, proposalID uint) (*models.VotingProposal, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageAnnouncements) {
		return nil, nil, &PermissionError{Action: string(permission.ActionManageAnnouncements)}
	}

	var p models.VotingProposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockProposal(tx, proposalID, &p); err != nil {
			return err
		}
		if p.Status == models.ProposalStatusActive {
			return alreadyDonef("proposal is already open for voting")
		}
		if p.Status != models.ProposalStatusDraft {
			return conflictf("proposal is %s, not Draft", p.Status)
		}
		p.Status = models.ProposalStatusActive
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	var ids []uint
	if err := s.db.Model(&models.User{}).Where("is_active = ?", true).Pluck("id", &ids).Error; err == nil {
		warnings = s.notify(warnings, ids, "Voting open: "+p.Title,
			fmt.Sprintf("Voting is open until %s.", p.VotingEnd.Format("02/01/06 15:04")), "voting")
	}
	warnings = s.record(warnings, actor, "activated", "proposal", p.ID, p.Title)
	return &p, warnings, nil
}

// CastVote records a member's single choice on an active proposal.
func (s *VotingService) CastVote(actor *models.User, proposalID uint, choice, comment string) (*models.Vote, []string, error) {
	if !actor.IsActive {
		return nil, nil, &PermissionError{Action: "vote"}
	}
	switch choice {
	case models.VoteYes, models.VoteNo, models.VoteAbstain:
	default:
		return nil, nil, validationf("vote choice must be yes, no or abstain")
	}

	now := time.Now()
	vote := models.Vote{
		ProposalID: proposalID,
		MemberID:   actor.ID,
		Choice:     choice,
		VoteDate:   now,
		Comment:    comment,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p models.VotingProposal
		if err := s.lockProposal(tx, proposalID, &p); err != nil {
			return err
		}
		if p.Status != models.ProposalStatusActive {
			return conflictf("proposal is not open for voting")
		}
		if now.Before(p.VotingStart) || !now.Before(p.VotingEnd) {
			return validationf("the voting window is closed")
		}

		var existing int64
		if err := tx.Model(&models.Vote{}).
			Where("proposal_id = ? AND member_id = ?", proposalID, actor.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return alreadyDonef("you have already voted on this proposal")
		}
		return tx.Create(&vote).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "voted", "proposal", proposalID, choice)
	return &vote, warnings, nil
}

// Tally is the outcome of a closed proposal.
type Tally struct {
	Yes           int     `json:"yes"`
	No            int     `json:"no"`
	Abstain       int     `json:"abstain"`
	Eligible      int     `json:"eligible"`
	Participation float64 `json:"participation_percent"`
	Passed        bool    `json:"passed"`
}

// Close ends voting and tallies the result: a proposal passes with a yes
// majority and participation at or above the configured minimum.
func (s *VotingService) Close(actor *models.User, proposalID uint, now time.Time) (*models.VotingProposal, *Tally, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageAnnouncements) {
		return nil, nil, nil, &PermissionError{Action: string(permission.ActionManageAnnouncements)}
	}

	var (
		p     models.VotingProposal
		tally Tally
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockProposal(tx, proposalID, &p); err != nil {
			return err
		}
		if p.Status == models.ProposalStatusClosed || p.Status == models.ProposalStatusImplemented {
			return alreadyDonef("proposal is already closed")
		}
		if p.Status != models.ProposalStatusActive {
			return conflictf("proposal is %s, not Active", p.Status)
		}
		if now.Before(p.VotingEnd) {
			return validationf("the voting window has not ended yet")
		}

		var votes []models.Vote
		if err := tx.Where("proposal_id = ?", proposalID).Find(&votes).Error; err != nil {
			return err
		}
		for _, v := range votes {
			switch v.Choice {
			case models.VoteYes:
				tally.Yes++
			case models.VoteNo:
				tally.No++
			case models.VoteAbstain:
				tally.Abstain++
			}
		}

		var eligible int64
		if err := tx.Model(&models.User{}).Where("is_active = ?", true).Count(&eligible).Error; err != nil {
			return err
		}
		tally.Eligible = int(eligible)
		if eligible > 0 {
			tally.Participation = float64(len(votes)) / float64(eligible) * 100
		}
		tally.Passed = tally.Yes > tally.No && tally.Participation >= p.MinimumParticipation

		p.Status = models.ProposalStatusClosed
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, nil, nil, err
	}

	outcome := "rejected"
	if tally.Passed {
		outcome = "passed"
	}
	var warnings []string
	warnings = s.record(warnings, actor, "closed", "proposal", p.ID,
		fmt.Sprintf("%s (%d yes / %d no / %d abstain)", outcome, tally.Yes, tally.No, tally.Abstain))
	return &p, &tally, warnings, nil
}

// MarkImplemented flags a passed, closed proposal as carried out.
func (s *VotingService) MarkImplemented(actor *models.User, proposalID uint) (*models.VotingProposal, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageAnnouncements) {
		return nil, nil, &PermissionError{Action: string(permission.ActionManageAnnouncements)}
	}

	var p models.VotingProposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockProposal(tx, proposalID, &p); err != nil {
			return err
		}
		if p.Status == models.ProposalStatusImplemented {
			return alreadyDonef("proposal is already implemented")
		}
		if p.Status != models.ProposalStatusClosed {
			return conflictf("only closed proposals can be implemented")
		}
		p.Status = models.ProposalStatusImplemented
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "implemented", "proposal", p.ID, p.Title)
	return &p, warnings, nil
}

func (s *VotingService) lockProposal(tx *gorm.DB, proposalID uint, out *models.VotingProposal) error {
	if err := tx.First(out, proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "proposal", ID: proposalID}
		}
		return err
	}
	return nil
}
