package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	// principalContextKey stores the authenticated *user in gin.Context.
	principalContextKey = "mockapi_principal"
	// HeaderUserID names the calling user.
	HeaderUserID = "X-User-Id"
)

// Handler builds the gin engine serving the API under /api.
func (s *Server) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.countHits(), s.injectFailures())
	s.RegisterRoutes(engine)
	return engine
}

// RegisterRoutes registers all API routes on engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	apiGroup := engine.Group("/api")
	apiGroup.Use(s.optionalAuth())

	auth := apiGroup.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.POST("/signup", s.handleSignup)
	}

	apiGroup.GET("/roles", s.handleListRoles)
	apiGroup.GET("/users/:id", s.handleGetUser)

	admin := AdminOnlyMiddleware()

	pets := apiGroup.Group("/pets")
	{
		pets.GET("", s.handleListPets)
		pets.GET("/:id", s.handleGetPet)
		pets.POST("", admin, s.handleCreatePet)
		pets.PUT("/:id", admin, s.handleUpdatePet)
		pets.DELETE("/:id", admin, s.handleDeletePet)
		pets.POST("/upload-image", admin, s.handleUpload)
	}

	apps := apiGroup.Group("/applications")
	{
		apps.POST("", s.handleCreateApplication)
		apps.GET("", admin, s.handleListApplications)
		apps.GET("/user/:userId", s.handleUserApplications)
		apps.PUT("/:id", admin, s.handleUpdateApplication)
	}

	donations := apiGroup.Group("/donations")
	{
		donations.POST("", s.handleCreateDonation)
		donations.GET("", admin, s.handleListDonations)
		donations.GET("/user/:userId", s.handleUserDonations)
		donations.GET("/:id/receipt", s.handleReceipt)
	}

	profiles := apiGroup.Group("/profiles")
	{
		profiles.GET("/user/:userId", s.handleGetProfile)
		profiles.PUT("/user/:userId", s.handleUpdateProfile)
		profiles.POST("/upload-image", s.handleUpload)
	}

	log.Debug("mock API routes registered")
}

func (s *Server) countHits() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := Route(c.Request.Method, c.FullPath())
		s.mu.Lock()
		s.hits[route]++
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := Route(c.Request.Method, c.FullPath())
		s.mu.Lock()
		f, ok := s.failures[route]
		s.mu.Unlock()
		if !ok {
			c.Next()
			return
		}
		if f.message == "" {
			c.AbortWithStatus(f.status)
			return
		}
		c.AbortWithStatusJSON(f.status, gin.H{"message": f.message})
	}
}

// optionalAuth resolves the X-User-Id header to a user when present.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		s.mu.Lock()
		u, ok := s.users[id]
		var p principal
		if ok {
			p = newPrincipal(u, s.roleName(u.RoleID))
		}
		s.mu.Unlock()
		if ok {
			c.Set(principalContextKey, p)
		}
		c.Next()
	}
}

// principal is the caller as seen by middleware.
type principal struct {
	UserID   int64
	RoleID   int64
	RoleName string
}

func newPrincipal(u *user, roleName string) principal {
	return principal{UserID: u.ID, RoleID: u.RoleID, RoleName: roleName}
}

// AdminOnlyMiddleware rejects callers that are not administrators.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}
		if p.RoleID != RoleAdmin && !strings.EqualFold(p.RoleName, "admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

func principalFromContext(c *gin.Context) (principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := value.(principal)
	return p, ok
}
