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

// MemberHandler serves the member roster and per-member summaries.
type MemberHandler struct {
	DB      *gorm.DB
	Members *service.MemberService
}

func NewMemberHandler(db *gorm.DB, members *service.MemberService) *MemberHandler {
	return &MemberHandler{DB: db, Members: members}
}

type createMemberReq struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *MemberHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req createMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	user, warnings, err := h.Members.Create(actor, service.MemberInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"user": publicUser(user)}, warnings))
}

func (h *MemberHandler) List(c *gin.Context) {
	q := h.DB.Order("full_name")
	if c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list members")
		return
	}
	out := make([]util.Response, 0, len(users))
	for i := range users {
		out = append(out, publicUser(&users[i]))
	}
	util.Success(c, util.Response{"members": out})
}

func (h *MemberHandler) Summary(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	summary, err := h.Members.Summary(id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"summary": summary})
}

type setActiveReq struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *MemberHandler) SetActive(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var req setActiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	user, warnings, err := h.Members.SetActive(actor, id, *req.Active)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"user": publicUser(user)}, warnings))
}
