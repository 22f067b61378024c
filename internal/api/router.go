package api

import (
	"net/http"

	"github.com/AryanXCode646/Karyakshetra/internal/api/handlers"
	"github.com/AryanXCode646/Karyakshetra/internal/api/middleware"
	"github.com/AryanXCode646/Karyakshetra/internal/relay"
	relayws "github.com/AryanXCode646/Karyakshetra/internal/websocket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Deps is what the HTTP surface needs.
type Deps struct {
	Hub            *relay.Hub
	Sockets        *relayws.Server
	Saves          handlers.SaveLister
	AllowedOrigins []string
}

// NewRouter builds the gin engine serving the relay socket and the
// introspection endpoints.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  originMatcher(deps.AllowedOrigins),
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// The editor connects to the bare host, so the root doubles as the
	// socket endpoint.
	router.GET("/", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			deps.Sockets.HandleWebSocket(c)
			return
		}
		c.String(http.StatusOK, "Karyakshetra collaboration relay")
	})
	router.GET("/ws", deps.Sockets.HandleWebSocket)

	status := handlers.NewStatusHandler(deps.Hub, deps.Saves)
	v1 := router.Group("/v1")
	{
		v1.GET("/health", status.Health)
		v1.GET("/presence", status.Presence)
		v1.GET("/documents", status.Documents)
		v1.GET("/saves", status.ListSaves)
	}

	return router
}

func originMatcher(allowed []string) func(string) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = true
	}
	return func(origin string) bool {
		return allowAll || set[origin]
	}
}
