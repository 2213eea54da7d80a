package server

import (
	"anoa.com/cpquest/internal/app"
	"anoa.com/cpquest/internal/middleware"

	badgeHttp "anoa.com/cpquest/internal/modules/badge/delivery/http"
	duelHttp "anoa.com/cpquest/internal/modules/duel/delivery/http"
	leaderboardHttp "anoa.com/cpquest/internal/modules/leaderboard/delivery/http"
	ledgerHttp "anoa.com/cpquest/internal/modules/ledger/delivery/http"
	notiHttp "anoa.com/cpquest/internal/modules/notification/delivery/http"
	schedulerHttp "anoa.com/cpquest/internal/modules/scheduler/delivery/http"

	"github.com/gin-gonic/gin"
)

type Server struct {
	engine *gin.Engine
	app    *app.App
}

func NewServer(a *app.App) *Server {
	jobHandler := schedulerHttp.NewJobHandler(a.Runner)
	ledgerHandler := ledgerHttp.NewLedgerHandler(a.Ledger)
	badgeHandler := badgeHttp.NewBadgeHandler(a.Badges)
	duelHandler := duelHttp.NewDuelHandler(a.Duels)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(a.Leaderboard)
	notificationHandler := notiHttp.NewNotificationHandler(a.Notifications)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(a.Config.ServiceToken)

	// Everything below is called by the host application
	api := router.Group("/api")
	api.Use(authMiddleware.RequireService())
	{
		// Periodic trigger
		api.GET("/jobs", jobHandler.List)
		api.POST("/jobs/run", jobHandler.RunAll)
		api.POST("/jobs/:name/run", jobHandler.Run)

		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/users/:user_id/xp", ledgerHandler.AdjustXP)
			adminGroup.POST("/users/:user_id/badges/:badge_id", badgeHandler.Grant)
		}
	}

	// Routes acting on behalf of one user
	user := api.Group("")
	user.Use(authMiddleware.RequireUser())
	{
		user.GET("/progress/me", ledgerHandler.GetMyProgress)
		user.POST("/badges/check", badgeHandler.Check)

		user.POST("/duels", duelHandler.Challenge)
		user.GET("/duels/:id", duelHandler.GetDuel)
		user.POST("/duels/:id/accept", duelHandler.Accept)
		user.POST("/duels/:id/decline", duelHandler.Decline)

		user.GET("/notifications", notificationHandler.GetNotifications)
		user.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		user.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		user.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
	}

	return &Server{
		engine: router,
		app:    a,
	}
}

func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}
