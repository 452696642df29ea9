// Package httpapi exposes the production pipeline and presenter profiles over
// REST. Identity comes from the X-User-ID header; there is no token protocol
// here, callers are expected to sit behind their own gateway.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/airwavefm/airwave/internal/logbook"
	"github.com/airwavefm/airwave/internal/pipeline"
	"github.com/airwavefm/airwave/internal/profile"
	"github.com/airwavefm/airwave/internal/script"
)

const ctxUserKey = "airwave_user"

// Server wires the stores and the pipeline runner into gin handlers.
type Server struct {
	profiles *profile.Store
	scripts  *script.Store
	runner   *pipeline.Runner
	book     *logbook.Logbook
}

func NewServer(profiles *profile.Store, scripts *script.Store, runner *pipeline.Runner, book *logbook.Logbook) *Server {
	return &Server{profiles: profiles, scripts: scripts, runner: runner, book: book}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api", requireUser())

	prof := api.Group("/profile")
	prof.GET("", s.getProfile)
	prof.PUT("", s.updateProfile)
	prof.GET("/completeness", s.profileCompleteness)
	prof.POST("/show-structure", s.setShowStructure)

	skills := api.Group("/skills")
	skills.POST("/complete-workflow", s.completeWorkflow)
	skills.GET("/scripts", s.listScripts)
	skills.GET("/script/:id", s.getScript)
	skills.POST("/deliver-script", s.deliverScript)
	skills.DELETE("/script/:id", s.deleteScript)

	return router
}

// requireUser resolves the caller identity from X-User-ID.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			fail(c, http.StatusUnauthorized, "X-User-ID header is required")
			c.Abort()
			return
		}
		c.Set(ctxUserKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return ""
	}
	userID, _ := v.(string)
	return userID
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
