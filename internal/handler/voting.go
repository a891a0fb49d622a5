package handler

import (
	"net/http"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/middleware"
	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/service"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VotingHandler serves proposals and ballots.
type VotingHandler struct {
	DB     *gorm.DB
	Voting *service.VotingService
}

func NewVotingHandler(db *gorm.DB, voting *service.VotingService) *VotingHandler {
	return &VotingHandler{DB: db, Voting: voting}
}

type createProposalReq struct {
	Title                string    `json:"title" binding:"required"`
	Description          string    `json:"description" binding:"required"`
	Type                 string    `json:"type" binding:"required"`
	VotingStart          time.Time `json:"voting_start" binding:"required"`
	VotingEnd            time.Time `json:"voting_end" binding:"required"`
	MinimumParticipation float64   `json:"minimum_participation"`
}

func (h *VotingHandler) CreateProposal(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req createProposalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if req.MinimumParticipation == 0 {
		req.MinimumParticipation = 50
	}
	p, warnings, err := h.Voting.CreateProposal(actor, service.ProposalInput{
		Title:                req.Title,
		Description:          req.Description,
		Type:                 req.Type,
		VotingStart:          req.VotingStart,
		VotingEnd:            req.VotingEnd,
		MinimumParticipation: req.MinimumParticipation,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"proposal": p}, warnings))
}

func (h *VotingHandler) List(c *gin.Context) {
	q := h.DB.Order("created_date DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.VotingProposal
	if err := q.Preload("Creator").Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list proposals")
		return
	}
	util.Success(c, util.Response{"proposals": rows})
}

func (h *VotingHandler) Activate(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	p, warnings, err := h.Voting.Activate(actor, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"proposal": p}, warnings))
}

type castVoteReq struct {
	Choice  string `json:"choice" binding:"required"`
	Comment string `json:"comment"`
}

func (h *VotingHandler) CastVote(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var req castVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	vote, warnings, err := h.Voting.CastVote(actor, id, req.Choice, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"vote": vote}, warnings))
}

func (h *VotingHandler) Close(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	p, tally, warnings, err := h.Voting.Close(actor, id, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"proposal": p, "tally": tally}, warnings))
}

func (h *VotingHandler) MarkImplemented(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	p, warnings, err := h.Voting.MarkImplemented(actor, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"proposal": p}, warnings))
}
