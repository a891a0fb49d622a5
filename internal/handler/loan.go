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

// LoanHandler serves the loan lifecycle: application, decision, repayments,
// overdue management.
type LoanHandler struct {
	DB    *gorm.DB
	Loans *service.LoanService
}

func NewLoanHandler(db *gorm.DB, loans *service.LoanService) *LoanHandler {
	return &LoanHandler{DB: db, Loans: loans}
}

type applyLoanReq struct {
	Amount         string `json:"amount" binding:"required"`
	Purpose        string `json:"purpose" binding:"required"`
	DurationMonths int    `json:"duration_months" binding:"required"`
	Type           string `json:"type"`
	Category       string `json:"category"`
	EmergencyType  string `json:"emergency_type"`
	RepaymentMode  string `json:"repayment_mode"`
	Occupation     string `json:"occupation"`
	MonthlyIncome  string `json:"monthly_income"`

	// external borrower fields
	BorrowerName    string `json:"borrower_name"`
	BorrowerAddress string `json:"borrower_address"`
	BorrowerPhone   string `json:"borrower_phone"`
	IDNumber        string `json:"id_number"`
	KRAPin          string `json:"kra_pin"`
	GuarantorID     *uint  `json:"guarantor_id"`
}

func (h *LoanHandler) Apply(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req applyLoanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, err := util.ParseAmountToCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var incomeCents int64
	if req.MonthlyIncome != "" {
		if incomeCents, err = util.ParseAmountToCents(req.MonthlyIncome); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}
	if req.Type == "" {
		req.Type = models.LoanTypeInternal
	}
	if req.Category == "" {
		req.Category = models.LoanCategoryShortTerm
	}

	loan, warnings, err := h.Loans.Apply(actor, service.LoanApplication{
		AmountCents:        cents,
		Purpose:            req.Purpose,
		DurationMonths:     req.DurationMonths,
		Type:               req.Type,
		Category:           req.Category,
		EmergencyType:      req.EmergencyType,
		RepaymentMode:      req.RepaymentMode,
		Occupation:         req.Occupation,
		MonthlyIncomeCents: incomeCents,
		BorrowerName:       req.BorrowerName,
		BorrowerAddress:    req.BorrowerAddress,
		BorrowerPhone:      req.BorrowerPhone,
		IDNumber:           req.IDNumber,
		KRAPin:             req.KRAPin,
		GuarantorID:        req.GuarantorID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"loan": loan}, warnings))
}

func (h *LoanHandler) List(c *gin.Context) {
	q := h.DB.Where("is_deleted = ?", false).Order("application_date DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if memberID := c.Query("member_id"); memberID != "" {
		id, err := util.ParseID(memberID)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		q = q.Where("member_id = ?", id)
	}
	if c.Query("overdue") == "true" {
		q = q.Where("is_overdue = ?", true)
	}
	var loans []models.Loan
	if err := q.Preload("Member").Find(&loans).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list loans")
		return
	}
	util.Success(c, util.Response{"loans": loans})
}

func (h *LoanHandler) Get(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	loan, err := h.Loans.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"loan": loan})
}

type decideLoanReq struct {
	Approve        *bool   `json:"approve" binding:"required"`
	Amount         string  `json:"amount"`
	InterestRate   float64 `json:"interest_rate"`
	DurationMonths int     `json:"duration_months"`
	Notes          string  `json:"notes"`
}

// Decide finalises a pending loan. The approver may revise amount, rate and
// duration; omitted fields keep the applied-for terms.
func (h *LoanHandler) Decide(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var req decideLoanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	current, err := h.Loans.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	d := service.LoanDecision{
		AmountCents:    current.AmountCents,
		InterestRate:   current.InterestRate,
		DurationMonths: current.DurationMonths,
		Approve:        *req.Approve,
		Notes:          req.Notes,
	}
	if req.Amount != "" {
		if d.AmountCents, err = util.ParseAmountToCents(req.Amount); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}
	if req.InterestRate > 0 {
		d.InterestRate = req.InterestRate
	}
	if req.DurationMonths > 0 {
		d.DurationMonths = req.DurationMonths
	}

	loan, warnings, err := h.Loans.Decide(actor, id, d)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"loan": loan}, warnings))
}

type repayReq struct {
	Amount string `json:"amount" binding:"required"`
}

func (h *LoanHandler) Repay(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var req repayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, err := util.ParseAmountToCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	loan, repayment, warnings, err := h.Loans.Repay(actor, id, cents)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{
		"loan":      loan,
		"repayment": repayment,
	}, warnings))
}

// CheckOverdue sweeps active loans and flags the ones past due date.
func (h *LoanHandler) CheckOverdue(c *gin.Context) {
	flagged, err := h.Loans.CheckOverdue(time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "overdue sweep failed")
		return
	}
	util.Success(c, util.Response{"flagged": flagged})
}

func (h *LoanHandler) ApplyLateFee(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	fine, warnings, err := h.Loans.ApplyLateFee(actor, id, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"fine": fine}, warnings))
}

func (h *LoanHandler) Expire(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	loan, warnings, err := h.Loans.Expire(actor, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"loan": loan}, warnings))
}

func (h *LoanHandler) Delete(c *gin.Context) {
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
	warnings, err := h.Loans.Delete(actor, id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"info": "loan deleted"}, warnings))
}
