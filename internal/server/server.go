package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/analytics"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/assistant"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/catalog"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/config"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/email"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/kiosk"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/maintenance"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/membership"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/walkin"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	router      *gin.Engine
	http        *http.Server
	maintenance *maintenance.Runner
}

// New wires every repository, service and handler. rdb and mailer may be
// nil, in which case the catalog runs uncached and no mail is sent.
func New(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, mailer *email.Service, clk clock.Clock) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	auditService := audit.NewService(audit.NewRepository(db), clk)

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, auditService, clk, cfg.JWTSecret)

	catalogRepo := catalog.NewRepository(db)
	catalogService := catalog.NewService(catalogRepo, catalog.NewRedisCache(rdb, cfg.CatalogCacheTTL), auditService, clk)

	var notifier membership.Notifier
	if mailer != nil {
		notifier = mailer
	}
	membershipService := membership.NewService(membership.NewRepository(db), userRepo, notifier, auditService, clk)

	walkinService := walkin.NewService(walkin.NewRepository(db), catalogRepo, auditService, clk)
	kioskService := kiosk.NewService(kiosk.NewRepository(db), userRepo, membership.NewRepository(db), auditService, clk)
	analyticsService := analytics.NewService(analytics.NewRepository(db), auditService, clk)
	assistantService := assistant.NewService(catalogService, membershipService, userService, kioskService, clk)
	runner := maintenance.NewRunner(membershipService, analyticsService, clk, cfg.ExpiryReminderDays)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestContextMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
	)

	h := handlers{
		user:        user.NewHandler(userService),
		catalog:     catalog.NewHandler(catalogService),
		membership:  membership.NewHandler(membershipService),
		walkin:      walkin.NewHandler(walkinService),
		kiosk:       kiosk.NewHandler(kioskService),
		audit:       audit.NewHandler(auditService),
		analytics:   analytics.NewHandler(analyticsService, clk),
		assistant:   assistant.NewHandler(assistantService),
		maintenance: maintenance.NewHandler(runner),
	}
	registerRoutes(router, cfg, h, deniedRecorder(auditService))

	return &Server{
		router:      router,
		maintenance: runner,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

type handlers struct {
	user        *user.Handler
	catalog     *catalog.Handler
	membership  *membership.Handler
	walkin      *walkin.Handler
	kiosk       *kiosk.Handler
	audit       *audit.Handler
	analytics   *analytics.Handler
	assistant   *assistant.Handler
	maintenance *maintenance.Handler
}

func registerRoutes(router *gin.Engine, cfg *config.Config, h handlers, denied auth.DeniedHook) {
	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	public := router.Group("/auth")
	{
		public.POST("/register", h.user.Register)
		public.POST("/login", RateLimitMiddleware(cfg.KioskRateLimitRPS, cfg.KioskRateLimitBurst), h.user.Login)
		public.POST("/refresh", h.user.RefreshToken)
	}

	router.POST("/kiosk", RateLimitMiddleware(cfg.KioskRateLimitRPS, cfg.KioskRateLimitBurst), h.kiosk.Tap)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.POST("/auth/logout", h.user.Logout)
		protected.GET("/me", h.user.GetMe)
		protected.PUT("/me", h.user.UpdateMe)
		protected.POST("/me/password", h.user.ChangePassword)
		protected.GET("/plans", h.catalog.ListAvailable)
		protected.GET("/assistant/context", h.assistant.Context)
	}

	member := router.Group("/subscriptions")
	member.Use(authMiddleware, auth.RequireRole(denied, auth.RoleMember))
	{
		member.POST("", h.membership.Purchase)
		member.GET("", h.membership.List)
		member.GET("/current", h.membership.Current)
	}

	staff := router.Group("/staff")
	staff.Use(authMiddleware, auth.RequireRole(denied, auth.RoleStaff))
	{
		staff.GET("/dashboard", h.analytics.StaffDashboard)

		staff.GET("/payments/pending", h.membership.Pending)
		staff.POST("/payments/:id/confirm", h.membership.Confirm)
		staff.POST("/payments/:id/reject", h.membership.Reject)
		staff.POST("/subscriptions/:id/cancel", h.membership.Cancel)
		staff.GET("/subscriptions/expiring", h.membership.Expiring)

		staff.POST("/walkins", h.walkin.Sell)
		staff.GET("/walkins", h.walkin.Recent)

		staff.GET("/members", h.user.ListMembers)
		staff.GET("/members/:id", h.membership.MemberDetail)
		staff.POST("/members/:id/pin", h.kiosk.IssuePIN)
		staff.GET("/attendance", h.kiosk.Report)

		staff.GET("/plans", h.catalog.ListAll)
		staff.POST("/plans", h.catalog.Create)
		staff.PUT("/plans/:id", h.catalog.Update)
		staff.POST("/plans/:id/toggle", h.catalog.Toggle)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(denied, auth.RoleAdmin))
	{
		admin.GET("/dashboard", h.analytics.AdminDashboard)
		admin.GET("/reports", h.analytics.Reports)
		admin.POST("/analytics/recompute", h.analytics.Recompute)
		admin.POST("/maintenance/expire", h.maintenance.Expire)

		admin.GET("/plans/archived", h.catalog.ListArchived)
		admin.POST("/plans/:id/archive", h.catalog.Archive)
		admin.POST("/plans/:id/restore", h.catalog.Restore)
		admin.DELETE("/plans/:id", h.catalog.Delete)

		admin.POST("/staff", h.user.CreateStaff)

		admin.GET("/audit", h.audit.List)
		admin.GET("/audit/security", h.audit.Security)
		admin.GET("/audit/financial", h.audit.Financial)
		admin.GET("/audit/users/:id", h.audit.UserActivity)
	}
}

// deniedRecorder writes an unauthorized_access entry for every failed role
// check.
func deniedRecorder(recorder audit.Recorder) auth.DeniedHook {
	return func(c *gin.Context, required []auth.Role) {
		userID, _ := auth.GetUserID(c)
		role, _ := auth.GetRole(c)

		names := make([]string, 0, len(required))
		for _, r := range required {
			names = append(names, string(r))
		}

		recorder.Record(c.Request.Context(), audit.Event{
			UserID:      audit.UserRef(userID),
			Action:      audit.ActionUnauthorizedAccess,
			Severity:    audit.SeverityWarning,
			Description: fmt.Sprintf("%s %s denied for role %s", c.Request.Method, c.FullPath(), role),
			Extra: map[string]interface{}{
				"path":     c.Request.URL.Path,
				"required": strings.Join(names, ","),
			},
		})
	}
}

// Maintenance exposes the runner so the caller can schedule it.
func (s *Server) Maintenance() *maintenance.Runner {
	return s.maintenance
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Request-ID, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
