package models

import "time"

// Proposal statuses.
const (
	ProposalStatusDraft       = "Draft"
	ProposalStatusActive      = "Active"
	ProposalStatusClosed      = "Closed"
	ProposalStatusImplemented = "Implemented"
)

// Vote choices.
const (
	VoteYes     = "yes"
	VoteNo      = "no"
	VoteAbstain = "abstain"
)

// VotingProposal is a motion put to the members with a voting window
// [VotingStart, VotingEnd).
type VotingProposal struct {
	ID                   uint   `gorm:"primaryKey"`
	Title                string `gorm:"size:200;not null"`
	Description          string `gorm:"type:text;not null"`
	Type                 string `gorm:"size:50;not null"` // policy, financial, member, project
	CreatedByID          uint   `gorm:"not null"`
	CreatedDate          time.Time
	VotingStart          time.Time `gorm:"not null"`
	VotingEnd            time.Time `gorm:"not null"`
	Status               string    `gorm:"size:20;index;default:Draft"`
	RequiresMajority     bool      `gorm:"default:true"`
	MinimumParticipation float64   `gorm:"default:50"` // percent of active members
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Creator User   `gorm:"foreignKey:CreatedByID"`
	Votes   []Vote `gorm:"foreignKey:ProposalID"`
}

// Vote is one member's single, immutable choice on a proposal.
// At most one vote per (proposal, member).
type Vote struct {
	ID         uint   `gorm:"primaryKey"`
	ProposalID uint   `gorm:"index:idx_vote_once,unique;not null"`
	MemberID   uint   `gorm:"index:idx_vote_once,unique;not null"`
	Choice     string `gorm:"size:20;not null"` // yes, no, abstain
	VoteDate   time.Time
	Comment    string `gorm:"type:text"`
	CreatedAt  time.Time

	Member User `gorm:"foreignKey:MemberID"`
}
