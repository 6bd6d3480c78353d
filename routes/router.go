package routes

import (
	"net/http"

	"pragatipath-be/controllers"
	"pragatipath-be/media"
	"pragatipath-be/middlewares"
	"pragatipath-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxMultipartMemory bounds the form bytes held in memory; the rest spills to disk.
const maxMultipartMemory = 32 << 20

// Options wires the HTTP surface to the services behind it.
type Options struct {
	Auth   *services.AuthService
	Issues *services.IssueService
	Tokens middlewares.TokenVerifier
	Logger *zap.Logger

	CORSOrigins []string

	// IssueQuota and IssueDailyLimit enable the per-reporter creation cap.
	IssueQuota      middlewares.Quota
	IssueDailyLimit int

	// UploadDir is served under UploadPublicPath when media is kept on disk.
	UploadDir        string
	UploadPublicPath string
}

// NewRouter builds the gin engine with middleware and every route registered.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.RedirectTrailingSlash = false

	r.Use(middlewares.RequestLogger(opts.Logger))
	r.Use(middlewares.Recovery(opts.Logger))

	corsConfig := cors.DefaultConfig()
	if len(opts.CORSOrigins) == 0 || (len(opts.CORSOrigins) == 1 && opts.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.CORSOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", middlewares.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middlewares.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.IsDevelopment = gin.Mode() != gin.ReleaseMode
	// served images are embedded cross-origin by the web client
	secureConfig.ContentSecurityPolicy = ""
	r.Use(secure.New(secureConfig))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Pragati Path backend is running"})
	})

	if opts.UploadDir != "" {
		publicPath := opts.UploadPublicPath
		if publicPath == "" {
			publicPath = media.DefaultPublicPath
		}
		r.Static(publicPath, opts.UploadDir)
	}

	requireAuth := middlewares.AuthMiddleware(opts.Tokens, opts.Auth, opts.Logger)

	var createLimit gin.HandlerFunc
	if opts.IssueQuota != nil && opts.IssueDailyLimit > 0 {
		createLimit = middlewares.IssueRateLimiter(opts.IssueQuota, opts.IssueDailyLimit, opts.Logger)
	}

	AuthRoutes(r, controllers.NewAuthController(opts.Auth, opts.Logger), requireAuth)
	IssueRoutes(r, controllers.NewIssueController(opts.Issues, opts.Logger), requireAuth, createLimit)

	return r
}
