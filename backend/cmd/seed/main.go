package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"sage-clone/backend/internal/adapter"
	"sage-clone/backend/internal/graph"
	"sage-clone/backend/internal/graphrag"
	"sage-clone/backend/pkg/config"
	apperrors "sage-clone/backend/pkg/errors"
	"sage-clone/backend/pkg/logger"
)

// demoMemories is a small seed set covering every content category for one
// demo user, enough for end-to-end query runs against a fresh database
var demoMemories = map[graphrag.Category][]string{
	graphrag.CategoryMoments: {
		"Discussed a difficult conversation with her manager about workload and boundaries",
		"Explored feelings that came up after visiting her childhood home",
		"Worked through anxiety before an upcoming job interview",
	},
	graphrag.CategoryReflections: {
		"I realized I take on other people's problems as my own",
		"Saying no doesn't make me a bad person",
	},
	graphrag.CategoryNotes: {
		"Shows strong self-awareness; responds well to open-ended questions about boundaries",
		"Avoidance pattern appears when family topics come up",
	},
	graphrag.CategoryPatterns: {
		"Tends to overcommit at work when feeling anxious",
		"Withdraws from friends during stressful periods",
	},
	graphrag.CategoryValues: {
		"Being reliable for the people she cares about",
		"Honesty, even when it is uncomfortable",
	},
}

func main() {
	userName := flag.String("user-name", "Demo User", "Name for the demo user")
	userID := flag.String("user-id", "", "Reuse an existing user id instead of creating one")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

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

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver)

	log.Info("Ensuring schema...")
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	log.Info("Ensuring vector indexes...", zap.Int("dimensions", cfg.EmbeddingDimensions))
	if err := repo.EnsureVectorIndexes(ctx, cfg.EmbeddingDimensions); err != nil {
		log.Fatal("Failed to ensure vector indexes", zap.Error(err))
	}

	// Resolve or create the demo user
	var owner *graphrag.Owner
	if *userID != "" {
		owner, err = repo.Resolve(ctx, *userID)
		if apperrors.IsOwnerNotFound(err) {
			log.Fatal("User not found", zap.String("user_id", *userID))
		}
		if err != nil {
			log.Fatal("Failed to resolve user", zap.Error(err))
		}
	} else {
		owner, err = repo.CreateUser(ctx, *userName)
		if err != nil {
			log.Fatal("Failed to create demo user", zap.Error(err))
		}
	}

	log.Info("Seeding memories for user",
		zap.String("user_id", owner.ID),
		zap.String("name", owner.Name),
	)

	embeddingGateway := adapter.NewEmbeddingGateway(cfg.LiteLLMURL, cfg.OpenRouterAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions)

	seeded := 0
	for _, category := range graphrag.AllCategories {
		for _, content := range demoMemories[category] {
			vector, err := embeddingGateway.Embed(ctx, content)
			if err != nil {
				log.Error("Failed to embed seed content",
					zap.String("category", category.String()),
					zap.Error(err),
				)
				os.Exit(1)
			}

			if _, err := repo.StoreItem(ctx, category, owner.ID, content, vector); err != nil {
				log.Error("Failed to store seed item",
					zap.String("category", category.String()),
					zap.Error(err),
				)
				os.Exit(1)
			}
			seeded++
		}
	}

	log.Info("Seeding complete",
		zap.String("user_id", owner.ID),
		zap.Int("items", seeded),
	)
	fmt.Printf("Seeded %d memories for user %s (%s)\n", seeded, owner.Name, owner.ID)
}
