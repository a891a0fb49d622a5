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

// FineHandler serves penalty issuance and settlement.
type FineHandler struct {
	DB    *gorm.DB
	Fines *service.FineService
}

func NewFineHandler(db *gorm.DB, fines *service.FineService) *FineHandler {
	return &FineHandler{DB: db, Fines: fines}
}

type issueFineReq struct {
	MemberID uint   `json:"member_id" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Reason   string `json:"reason"`
}

func (h *FineHandler) Issue(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req issueFineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, err := util.ParseAmountToCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	fine, warnings, err := h.Fines.Issue(actor, service.FineInput{
		MemberID:    req.MemberID,
		AmountCents: cents,
		Type:        req.Type,
		Reason:      req.Reason,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"fine": fine}, warnings))
}

func (h *FineHandler) List(c *gin.Context) {
	q := h.DB.Where("is_deleted = ?", false).Order("date_issued DESC")
	if memberID := c.Query("member_id"); memberID != "" {
		id, err := util.ParseID(memberID)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		q = q.Where("member_id = ?", id)
	}
	if c.Query("unpaid") == "true" {
		q = q.Where("is_paid = ?", false)
	}
	var fines []models.Fine
	if err := q.Preload("Member").Find(&fines).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list fines")
		return
	}
	util.Success(c, util.Response{"fines": fines})
}

type settleFineReq struct {
	Notes string `json:"notes"`
}

func (h *FineHandler) Settle(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var req settleFineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	fine, warnings, err := h.Fines.Settle(actor, id, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"fine": fine}, warnings))
}

func (h *FineHandler) Delete(c *gin.Context) {
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
	warnings, err := h.Fines.Delete(actor, id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"info": "fine deleted"}, warnings))
}
