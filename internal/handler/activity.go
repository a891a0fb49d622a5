package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/activity"
	"github.com/pamoja-connect/Chama-manager/internal/middleware"
	"github.com/pamoja-connect/Chama-manager/internal/permission"
	"github.com/pamoja-connect/Chama-manager/internal/service"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the append-only activity trail and the debt
// reminder sweep.
type ActivityHandler struct {
	Trail     *activity.Logger
	Reminders *service.ReminderService
}

func NewActivityHandler(trail *activity.Logger, reminders *service.ReminderService) *ActivityHandler {
	return &ActivityHandler{Trail: trail, Reminders: reminders}
}

func (h *ActivityHandler) Recent(c *gin.Context) {
	limit := 100
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	lines, err := h.Trail.Recent(limit)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read activity log")
		return
	}
	util.Success(c, util.Response{"activity": lines})
}

// Clear truncates the trail. Admin only.
func (h *ActivityHandler) Clear(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if permission.Role(user.Role) != permission.RoleAdmin {
		util.Error(c, http.StatusForbidden, util.CodePermission, "admin only")
		return
	}
	if err := h.Trail.Clear(); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to clear activity log")
		return
	}
	util.Success(c, util.Response{"info": "activity log cleared"})
}

// RunReminders sweeps due loans and unpaid fines and notifies their owners.
func (h *ActivityHandler) RunReminders(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	run, err := h.Reminders.Run(actor, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, withWarnings(util.Response{
		"loan_reminders": run.LoanReminders,
		"fine_reminders": run.FineReminders,
	}, run.Warnings))
}
