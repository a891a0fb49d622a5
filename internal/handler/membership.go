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

// MembershipHandler serves join applications. Apply is the only
// unauthenticated write endpoint in the API.
type MembershipHandler struct {
	DB          *gorm.DB
	Memberships *service.MembershipService
}

func NewMembershipHandler(db *gorm.DB, memberships *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{DB: db, Memberships: memberships}
}

type membershipApplyReq struct {
	FullName         string `json:"full_name" binding:"required"`
	Email            string `json:"email" binding:"required"`
	Phone            string `json:"phone" binding:"required"`
	IDNumber         string `json:"id_number" binding:"required"`
	Location         string `json:"location" binding:"required"`
	Occupation       string `json:"occupation" binding:"required"`
	ReasonForJoining string `json:"reason_for_joining" binding:"required"`
}

func (h *MembershipHandler) Apply(c *gin.Context) {
	var req membershipApplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	app, warnings, err := h.Memberships.Apply(service.ApplicationInput{
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		IDNumber:         req.IDNumber,
		Location:         req.Location,
		Occupation:       req.Occupation,
		ReasonForJoining: req.ReasonForJoining,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"application": app}, warnings))
}

func (h *MembershipHandler) List(c *gin.Context) {
	q := h.DB.Order("application_date DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.MembershipApplication
	if err := q.Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list applications")
		return
	}
	util.Success(c, util.Response{"applications": rows})
}

type reviewApplicationReq struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes"`
}

func (h *MembershipHandler) Review(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var req reviewApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	app, warnings, err := h.Memberships.Review(actor, id, *req.Approve, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"application": app}, warnings))
}
