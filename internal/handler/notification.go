package handler

import (
	"net/http"
	"strconv"

	"github.com/pamoja-connect/Chama-manager/internal/middleware"
	"github.com/pamoja-connect/Chama-manager/internal/notify"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler serves each user their own inbox.
type NotificationHandler struct {
	Store *notify.Store
}

func NewNotificationHandler(store *notify.Store) *NotificationHandler {
	return &NotificationHandler{Store: store}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	limit := 50
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	rows, err := h.Store.ListForUser(user.ID, c.Query("unread") == "true", limit)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list notifications")
		return
	}
	unread, err := h.Store.UnreadCount(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count notifications")
		return
	}
	util.Success(c, util.Response{"notifications": rows, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := h.Store.MarkRead(user.ID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "notification not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to mark read")
		}
		return
	}
	util.Success(c, util.Response{"info": "marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	n, err := h.Store.MarkAllRead(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to mark read")
		return
	}
	util.Success(c, util.Response{"marked": n})
}
