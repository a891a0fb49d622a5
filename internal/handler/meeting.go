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

// MeetingHandler serves meeting minutes.
type MeetingHandler struct {
	DB       *gorm.DB
	Meetings *service.MeetingService
}

func NewMeetingHandler(db *gorm.DB, meetings *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{DB: db, Meetings: meetings}
}

type recordMeetingReq struct {
	Title     string `json:"title" binding:"required"`
	DateHeld  string `json:"date_held" binding:"required"` // YYYY-MM-DD
	Agenda    string `json:"agenda"`
	Minutes   string `json:"minutes" binding:"required"`
	Attendees string `json:"attendees"`
	Decisions string `json:"decisions"`
}

func (h *MeetingHandler) Record(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var req recordMeetingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	dateHeld, err := time.Parse("2006-01-02", req.DateHeld)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date_held must be YYYY-MM-DD")
		return
	}
	meeting, warnings, err := h.Meetings.Record(actor, service.MeetingInput{
		Title:     req.Title,
		DateHeld:  dateHeld,
		Agenda:    req.Agenda,
		Minutes:   req.Minutes,
		Attendees: req.Attendees,
		Decisions: req.Decisions,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"meeting": meeting}, warnings))
}

func (h *MeetingHandler) List(c *gin.Context) {
	var rows []models.MeetingRecord
	if err := h.DB.Where("is_deleted = ?", false).
		Order("date_held DESC").Preload("Recorder").
		Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list meetings")
		return
	}
	util.Success(c, util.Response{"meetings": rows})
}

func (h *MeetingHandler) Delete(c *gin.Context) {
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
	warnings, err := h.Meetings.Delete(actor, id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{"info": "meeting record deleted"}, warnings))
}
