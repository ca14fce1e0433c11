package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"sage-clone/backend/internal/adapter"
	"sage-clone/backend/internal/graph"
	"sage-clone/backend/internal/graphrag"
	"sage-clone/backend/internal/memory"
	"sage-clone/backend/internal/persona"
	"sage-clone/backend/internal/utils"
	"sage-clone/backend/pkg/config"
	apperrors "sage-clone/backend/pkg/errors"
	"sage-clone/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize dependencies
	graphRepo := graph.NewRepository(driver)
	llmAdapter := adapter.NewLLMAdapter(cfg.LiteLLMURL, cfg.OpenRouterAPIKey, cfg.ModelID, cfg.LLMTimeout)
	embeddingGateway := adapter.NewEmbeddingGateway(cfg.LiteLLMURL, cfg.OpenRouterAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions)

	// Make sure constraints and vector indexes exist before serving
	if err := graphRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure graph schema", zap.Error(err))
	}
	if err := graphRepo.EnsureVectorIndexes(ctx, cfg.EmbeddingDimensions); err != nil {
		log.Fatal("Failed to ensure vector indexes", zap.Error(err))
	}

	directOrch := graphrag.NewOrchestrator(
		graphRepo, graphRepo, embeddingGateway, llmAdapter,
		graphrag.NewDirectRetriever(graphRepo), cfg.TopK,
	)
	retrieverOrch := graphrag.NewOrchestrator(
		graphRepo, graphRepo, embeddingGateway, llmAdapter,
		graphrag.NewIndexRetriever(graphRepo, embeddingGateway), cfg.TopK,
	)
	comparison := graphrag.NewComparison(directOrch, retrieverOrch)

	queryOrch := directOrch
	if cfg.RetrievalStrategy == string(graphrag.StrategyRetriever) {
		queryOrch = retrieverOrch
	}

	analyzer := memory.NewAnalyzer(llmAdapter, embeddingGateway, graphRepo)
	personaRouter := persona.NewRouter(llmAdapter, graphRepo, analyzer)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Answer a free-text question about one user's stored data
		api.POST("/query", func(c *gin.Context) {
			var req struct {
				UserID string `json:"user_id" binding:"required"`
				Query  string `json:"query" binding:"required"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			result, err := queryOrch.ExecuteQuery(c.Request.Context(), req.UserID, req.Query)
			if err != nil {
				log.Error("Query execution failed", zap.Error(err))
				if apperrors.IsStoreUnavailable(err) || apperrors.IsEmbeddingUnavailable(err) {
					c.JSON(http.StatusBadGateway, gin.H{"error": "Backing service unavailable"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query"})
				return
			}

			c.JSON(http.StatusOK, result)
		})

		// Run both retrieval strategies side by side
		api.POST("/query/compare", func(c *gin.Context) {
			var req struct {
				UserID string `json:"user_id" binding:"required"`
				Query  string `json:"query" binding:"required"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			result := comparison.Run(c.Request.Context(), req.UserID, req.Query)
			c.JSON(http.StatusOK, result)
		})

		// Chat with the Sage persona
		api.POST("/chat", func(c *gin.Context) {
			var req struct {
				UserID   string `json:"user_id" binding:"required"`
				UserName string `json:"user_name"`
				Message  string `json:"message" binding:"required"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			name := req.UserName
			if name == "" {
				name = utils.GenerateFriendlyName()
			}

			response, err := personaRouter.Chat(c.Request.Context(), req.UserID, name, req.Message)
			if err != nil {
				log.Error("Chat failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"response": response})
		})

		// User management
		api.POST("/users", func(c *gin.Context) {
			var req struct {
				Name string `json:"name"`
			}
			// Body is optional; a missing name gets a generated one
			_ = c.ShouldBindJSON(&req)

			if req.Name == "" {
				users, err := graphRepo.ListUsers(c.Request.Context())
				if err != nil {
					log.Error("Failed to list users for name generation", zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
					return
				}
				existing := make([]string, 0, len(users))
				for _, u := range users {
					existing = append(existing, u.Name)
				}
				req.Name = utils.GenerateUniqueName(existing, 50)
			}

			user, err := graphRepo.CreateUser(c.Request.Context(), req.Name)
			if err != nil {
				log.Error("Failed to create user", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}

			c.JSON(http.StatusCreated, user)
		})

		api.GET("/users", func(c *gin.Context) {
			users, err := graphRepo.ListUsers(c.Request.Context())
			if err != nil {
				log.Error("Failed to list users", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"users": users})
		})

		api.GET("/users/:id", func(c *gin.Context) {
			user, err := graphRepo.Resolve(c.Request.Context(), c.Param("id"))
			if err != nil {
				if apperrors.IsOwnerNotFound(err) {
					c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
					return
				}
				log.Error("Failed to resolve user", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
				return
			}
			c.JSON(http.StatusOK, user)
		})

		api.PUT("/users/:id", func(c *gin.Context) {
			var req struct {
				Name string `json:"name" binding:"required"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			user, err := graphRepo.UpdateUserName(c.Request.Context(), c.Param("id"), req.Name)
			if err != nil {
				if apperrors.IsOwnerNotFound(err) {
					c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
					return
				}
				log.Error("Failed to update user", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
				return
			}
			c.JSON(http.StatusOK, user)
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("strategy", cfg.RetrievalStrategy),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
