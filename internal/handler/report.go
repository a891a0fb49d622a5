package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/middleware"
	"github.com/pamoja-connect/Chama-manager/internal/permission"
	"github.com/pamoja-connect/Chama-manager/internal/report"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves group statistics and downloadable financial reports.
type ReportHandler struct {
	Reports   *report.Service
	GroupName string
}

func NewReportHandler(reports *report.Service, groupName string) *ReportHandler {
	return &ReportHandler{Reports: reports, GroupName: groupName}
}

func (h *ReportHandler) Statistics(c *gin.Context) {
	st, err := h.Reports.Statistics()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute statistics")
		return
	}
	util.Success(c, util.Response{"statistics": st})
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	if !h.canExport(c) {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"financial_report_%s.csv\"",
		time.Now().Format("20060102")))

	// BOM so Excel opens the file as UTF-8
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})
	if err := h.Reports.WriteCSV(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to render report")
	}
}

func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	if !h.canExport(c) {
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"financial_report_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := h.Reports.WriteXLSX(c.Writer, h.GroupName); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to render report")
	}
}

func (h *ReportHandler) canExport(c *gin.Context) bool {
	user := middleware.CurrentUser(c)
	if !permission.Has(permission.Role(user.Role), permission.ActionManageFinances) {
		util.Error(c, http.StatusForbidden, util.CodePermission, "not allowed to export reports")
		return false
	}
	return true
}
