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

// WelfareHandler serves the welfare fund: deposits, disbursements, balance.
type WelfareHandler struct {
	DB      *gorm.DB
	Welfare *service.WelfareService
}

func NewWelfareHandler(db *gorm.DB, welfare *service.WelfareService) *WelfareHandler {
	return &WelfareHandler{DB: db, Welfare: welfare}
}

type welfareContributionReq struct {
	MemberID uint   `json:"member_id" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Notes    string `json:"notes"`
}

func (h *WelfareHandler) RecordContribution(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req welfareContributionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, err := util.ParseAmountToCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	row, warnings, err := h.Welfare.RecordContribution(actor, service.WelfareContributionInput{
		MemberID:    req.MemberID,
		AmountCents: cents,
		Notes:       req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"contribution": row}, warnings))
}

type welfareExpenseReq struct {
	BeneficiaryID uint   `json:"beneficiary_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Type          string `json:"type" binding:"required"`
	Description   string `json:"description" binding:"required"`
}

func (h *WelfareHandler) RecordExpense(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req welfareExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, err := util.ParseAmountToCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	row, warnings, err := h.Welfare.RecordExpense(actor, service.WelfareExpenseInput{
		BeneficiaryID: req.BeneficiaryID,
		AmountCents:   cents,
		Type:          req.Type,
		Description:   req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"expense": row}, warnings))
}

func (h *WelfareHandler) List(c *gin.Context) {
	var contributions []models.WelfareContribution
	if err := h.DB.Where("is_deleted = ?", false).
		Order("date_recorded DESC").Preload("Member").
		Find(&contributions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list welfare contributions")
		return
	}
	var expenses []models.WelfareExpense
	if err := h.DB.Order("date_disbursed DESC").Preload("Beneficiary").
		Find(&expenses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list welfare expenses")
		return
	}
	balance, err := h.Welfare.Balance()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute balance")
		return
	}
	util.Success(c, util.Response{
		"contributions": contributions,
		"expenses":      expenses,
		"balance_cents": balance,
		"balance":       util.FormatCurrency(balance),
	})
}
