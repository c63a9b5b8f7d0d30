package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/internal/catalog"
	"github.com/malonaz/specchat/internal/configuration"
	"github.com/malonaz/specchat/internal/debug"
	"github.com/malonaz/specchat/internal/llm"
)

// NewServeCmd creates a new serve command
func NewServeCmd(config *configuration.Config) *cobra.Command {
	var opts struct {
		Address string
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat gateway",
		Long:  "Serve the chat gateway: streams model replies as text and UI spec patches",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Address != "" {
				config.Server.Address = opts.Address
			}
			server := New(config, llm.NewClient(config), debug.GetLogger())
			return server.Start()
		},
	}

	cmd.Flags().StringVarP(&opts.Address, "address", "a", "", "address to listen on (defaults to the configured one)")
	return cmd
}

// Server is the chat gateway.
type Server struct {
	config  *configuration.Config
	client  llm.Client
	catalog *catalog.Catalog
	logger  *slog.Logger
	engine  *gin.Engine
}

// New returns a server streaming replies from client.
func New(config *configuration.Config, client llm.Client, logger *slog.Logger) *Server {
	s := &Server{
		config:  config,
		client:  client,
		catalog: catalog.Default(),
		logger:  logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.loggingMiddleware())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  config.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "X-Vercel-AI-UI-Message-Stream"},
		MaxAge:        12 * time.Hour,
	}))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := engine.Group("/api")
	{
		api.GET("/models", s.handleListModels)
		limiter := newRateLimiter(config.Server.RateLimit, config.Server.RateBurst)
		api.POST("/chat", limiter.middleware(), s.handleChat)
	}
	s.engine = engine
	return s
}

// Handler returns the http handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address.
func (s *Server) Start() error {
	s.logger.Info("server starting", "address", s.config.Server.Address)
	server := &http.Server{
		Addr:              s.config.Server.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listening")
	}
	return nil
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}

type modelResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GatewayID string `json:"gatewayId"`
}

func (s *Server) handleListModels(c *gin.Context) {
	models := make([]modelResponse, 0, len(s.config.Models))
	for _, model := range s.config.Models {
		models = append(models, modelResponse{ID: model.ID, Name: model.Name, GatewayID: model.GatewayID})
	}
	c.JSON(http.StatusOK, gin.H{"models": models, "default": s.config.Chat.DefaultModel})
}
