package router

import (
	"github.com/pamoja-connect/Chama-manager/internal/activity"
	"github.com/pamoja-connect/Chama-manager/internal/config"
	"github.com/pamoja-connect/Chama-manager/internal/handler"
	"github.com/pamoja-connect/Chama-manager/internal/middleware"
	"github.com/pamoja-connect/Chama-manager/internal/notify"
	"github.com/pamoja-connect/Chama-manager/internal/receipt"
	"github.com/pamoja-connect/Chama-manager/internal/report"
	"github.com/pamoja-connect/Chama-manager/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires the collaborators, services and handlers into the Gin
// engine. The API is JSON-only.
func SetupRouter(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	// best-effort collaborators shared by the services
	notifications := notify.NewStore(db)
	receipts := receipt.NewIssuer(db)
	trail := activity.NewLogger(cfg.Log.ActivityFile)

	loans := service.NewLoanService(db, cfg.Loan, receipts, notifications, trail, logger)
	contributions := service.NewContributionService(db, receipts, notifications, trail, logger)
	fines := service.NewFineService(db, receipts, notifications, trail, logger)
	members := service.NewMemberService(db, cfg.Security.BcryptCost, trail, logger)
	welfare := service.NewWelfareService(db, receipts, notifications, trail, logger)
	voting := service.NewVotingService(db, notifications, trail, logger)
	announcements := service.NewAnnouncementService(db, notifications, trail, logger)
	meetings := service.NewMeetingService(db, trail, logger)
	memberships := service.NewMembershipService(db, notifications, trail, logger)
	reminders := service.NewReminderService(db, notifications, logger)
	reports := report.NewService(db)

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/login", authHandler.Login)

	// joining the group is the one public write
	membershipHandler := handler.NewMembershipHandler(db, memberships)
	api.POST("/membership/apply", membershipHandler.Apply)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, db))

	protected.GET("/me", authHandler.Me)
	protected.POST("/me/password", authHandler.ChangePassword)

	memberHandler := handler.NewMemberHandler(db, members)
	protected.POST("/members", memberHandler.Create)
	protected.GET("/members", memberHandler.List)
	protected.GET("/members/:id/summary", memberHandler.Summary)
	protected.PUT("/members/:id/active", memberHandler.SetActive)

	contributionHandler := handler.NewContributionHandler(db, contributions)
	protected.POST("/contributions", contributionHandler.Record)
	protected.GET("/contributions", contributionHandler.List)
	protected.DELETE("/contributions/:id", contributionHandler.Delete)

	loanHandler := handler.NewLoanHandler(db, loans)
	protected.POST("/loans", loanHandler.Apply)
	protected.GET("/loans", loanHandler.List)
	protected.GET("/loans/:id", loanHandler.Get)
	protected.POST("/loans/:id/decision", loanHandler.Decide)
	protected.POST("/loans/:id/repayments", loanHandler.Repay)
	protected.POST("/loans/:id/late-fee", loanHandler.ApplyLateFee)
	protected.POST("/loans/:id/expire", loanHandler.Expire)
	protected.DELETE("/loans/:id", loanHandler.Delete)
	protected.POST("/loans/check-overdue", loanHandler.CheckOverdue)

	fineHandler := handler.NewFineHandler(db, fines)
	protected.POST("/fines", fineHandler.Issue)
	protected.GET("/fines", fineHandler.List)
	protected.POST("/fines/:id/settle", fineHandler.Settle)
	protected.DELETE("/fines/:id", fineHandler.Delete)

	welfareHandler := handler.NewWelfareHandler(db, welfare)
	protected.POST("/welfare/contributions", welfareHandler.RecordContribution)
	protected.POST("/welfare/expenses", welfareHandler.RecordExpense)
	protected.GET("/welfare", welfareHandler.List)

	announcementHandler := handler.NewAnnouncementHandler(db, announcements)
	protected.POST("/announcements", announcementHandler.Post)
	protected.GET("/announcements", announcementHandler.List)
	protected.DELETE("/announcements/:id", announcementHandler.Delete)

	meetingHandler := handler.NewMeetingHandler(db, meetings)
	protected.POST("/meetings", meetingHandler.Record)
	protected.GET("/meetings", meetingHandler.List)
	protected.DELETE("/meetings/:id", meetingHandler.Delete)

	votingHandler := handler.NewVotingHandler(db, voting)
	protected.POST("/proposals", votingHandler.CreateProposal)
	protected.GET("/proposals", votingHandler.List)
	protected.POST("/proposals/:id/activate", votingHandler.Activate)
	protected.POST("/proposals/:id/votes", votingHandler.CastVote)
	protected.POST("/proposals/:id/close", votingHandler.Close)
	protected.POST("/proposals/:id/implemented", votingHandler.MarkImplemented)

	protected.GET("/membership/applications", membershipHandler.List)
	protected.POST("/membership/applications/:id/review", membershipHandler.Review)

	notificationHandler := handler.NewNotificationHandler(notifications)
	protected.GET("/notifications", notificationHandler.List)
	protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)

	receiptHandler := handler.NewReceiptHandler(receipts)
	protected.GET("/receipts/:number", receiptHandler.Get)

	reportHandler := handler.NewReportHandler(reports, cfg.App.GroupName)
	protected.GET("/reports/statistics", reportHandler.Statistics)
	protected.GET("/reports/export/csv", reportHandler.ExportCSV)
	protected.GET("/reports/export/xlsx", reportHandler.ExportXLSX)

	activityHandler := handler.NewActivityHandler(trail, reminders)
	protected.GET("/activity", activityHandler.Recent)
	protected.DELETE("/activity", activityHandler.Clear)
	protected.POST("/reminders/run", activityHandler.RunReminders)

	return r
}
