package handler

import (
	"net/http"

	"github.com/pamoja-connect/Chama-manager/internal/middleware"
	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/service"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContributionHandler serves savings deposits.
type ContributionHandler struct {
	DB            *gorm.DB
	Contributions *service.ContributionService
}

func NewContributionHandler(db *gorm.DB, contributions *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{DB: db, Contributions: contributions}
}

type recordContributionReq struct {
	MemberID uint   `json:"member_id" binding:"required"`
	Amount   string `json:"amount" binding:"required"` // decimal shillings, e.g. "5000.00"
	Type     string `json:"type"`
	Notes    string `json:"notes"`
}

func (h *ContributionHandler) Record(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req recordContributionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, err := util.ParseAmountToCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if req.Type == "" {
		req.Type = "Regular"
	}

	contribution, warnings, err := h.Contributions.Record(actor, service.ContributionInput{
		MemberID:    req.MemberID,
		AmountCents: cents,
		Type:        req.Type,
		Notes:       req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"contribution": contribution}, warnings))
}

func (h *ContributionHandler) List(c *gin.Context) {
	q := h.DB.Where("is_deleted = ?", false).Order("date_recorded DESC")
	if memberID := c.Query("member_id"); memberID != "" {
		id, err := util.ParseID(memberID)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		q = q.Where("member_id = ?", id)
	}
	var rows []models.Contribution
	if err := q.Preload("Member").Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list contributions")
		return
	}
	util.Success(c, util.Response{"contributions": rows})
}

func (h *ContributionHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var req deleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "a deletion reason is required")
		return
	}
	warnings, err := h.Contributions.Delete(actor, id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"info": "contribution deleted"}, warnings))
}

// deleteReq is the shared body for soft deletes; every removal names a reason.
type deleteReq struct {
	Reason string `json:"reason" binding:"required"`
}
