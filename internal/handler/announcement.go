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

// AnnouncementHandler serves group notices.
type AnnouncementHandler struct {
	DB            *gorm.DB
	Announcements *service.AnnouncementService
}

func NewAnnouncementHandler(db *gorm.DB, announcements *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{DB: db, Announcements: announcements}
}

type postAnnouncementReq struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	IsUrgent bool   `json:"is_urgent"`
}

func (h *AnnouncementHandler) Post(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req postAnnouncementReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	a, warnings, err := h.Announcements.Post(actor, service.AnnouncementInput{
		Title:    req.Title,
		Content:  req.Content,
		IsUrgent: req.IsUrgent,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"announcement": a}, warnings))
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	var rows []models.Announcement
	if err := h.DB.Where("is_deleted = ?", false).
		Order("date_created DESC").Preload("Creator").
		Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list announcements")
		return
	}
	util.Success(c, util.Response{"announcements": rows})
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
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
	warnings, err := h.Announcements.Delete(actor, id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"info": "announcement deleted"}, warnings))
}
