package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sage-clone/backend/internal/graphrag"
	apperrors "sage-clone/backend/pkg/errors"
)

// categoryRelationships maps each category onto the relationship connecting
// its nodes to the owning user
var categoryRelationships = map[graphrag.Category]string{
	graphrag.CategoryMoments:     "HAD_MOMENT",
	graphrag.CategoryReflections: "HAS_REFLECTION",
	graphrag.CategoryNotes:       "CREATED_NOTE",
	graphrag.CategoryPatterns:    "EXHIBITS_PATTERN",
	graphrag.CategoryValues:      "HOLDS_VALUE",
}

// StoreItem writes a new memory item of the given category for the owner,
// attaching the precomputed embedding so the item is retrievable immediately.
func (r *Repository) StoreItem(ctx context.Context, category graphrag.Category, ownerID, content string, vector []float32) (string, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	cfg := category.Config()
	rel := categoryRelationships[category]
	itemID := uuid.New().String()

	query := fmt.Sprintf(`
		MATCH (u:User {id: $user_id})
		CREATE (n:%s {
			id: $item_id,
			user_id: $user_id,
			%s: $content,
			%s: $embedding,
			timestamp: datetime()
		})
		CREATE (u)-[:%s]->(n)
		RETURN n.id as id
	`, cfg.NodeLabel, cfg.ContentProperty, cfg.EmbeddingProperty, rel)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"user_id":   ownerID,
		"item_id":   itemID,
		"content":   content,
		"embedding": toFloat64Slice(vector),
	})
	if err != nil {
		return "", apperrors.NewGraphQueryFailed("store "+cfg.NodeLabel, err)
	}

	if _, err := result.Single(ctx); err != nil {
		// No record means the MATCH on the user failed
		return "", apperrors.NewOwnerNotFound(ownerID)
	}

	r.logger.Info("Memory item stored",
		zap.String("label", cfg.NodeLabel),
		zap.String("user_id", ownerID),
		zap.String("item_id", itemID),
	)

	return itemID, nil
}

// FetchMemoryContext returns the most recent stored content per category for
// the owner. Used to ground persona conversations; embeddings are not loaded.
func (r *Repository) FetchMemoryContext(ctx context.Context, ownerID string, perCategory int) (map[graphrag.Category][]string, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	if perCategory < 1 {
		perCategory = 5
	}

	memory := make(map[graphrag.Category][]string)
	for _, category := range graphrag.AllCategories {
		cfg := category.Config()
		query := fmt.Sprintf(`
			MATCH (n:%s {user_id: $user_id})
			RETURN n.%s as content
			ORDER BY n.timestamp DESC
			LIMIT $limit
		`, cfg.NodeLabel, cfg.ContentProperty)

		result, err := session.Run(ctx, query, map[string]interface{}{
			"user_id": ownerID,
			"limit":   perCategory,
		})
		if err != nil {
			return nil, apperrors.NewGraphQueryFailed("fetch memory context", err)
		}

		var contents []string
		for result.Next(ctx) {
			if content := getString(result.Record(), "content", ""); content != "" {
				contents = append(contents, content)
			}
		}
		if err := result.Err(); err != nil {
			return nil, apperrors.NewGraphQueryFailed("fetch memory context", err)
		}

		if len(contents) > 0 {
			memory[category] = contents
		}
	}

	return memory, nil
}

// EnsureSchema creates uniqueness constraints and supporting indexes.
// Safe to call on every startup.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE CONSTRAINT moment_id_unique IF NOT EXISTS FOR (m:Moment) REQUIRE m.id IS UNIQUE",
		"CREATE CONSTRAINT reflection_id_unique IF NOT EXISTS FOR (r:Reflection) REQUIRE r.id IS UNIQUE",
		"CREATE CONSTRAINT value_id_unique IF NOT EXISTS FOR (v:Value) REQUIRE v.id IS UNIQUE",
		"CREATE CONSTRAINT pattern_id_unique IF NOT EXISTS FOR (p:Pattern) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT persona_note_id_unique IF NOT EXISTS FOR (pn:PersonaNote) REQUIRE pn.id IS UNIQUE",
		"CREATE INDEX moment_user_timestamp_index IF NOT EXISTS FOR (m:Moment) ON (m.user_id, m.timestamp)",
		"CREATE INDEX reflection_user_index IF NOT EXISTS FOR (r:Reflection) ON (r.user_id)",
		"CREATE INDEX value_user_index IF NOT EXISTS FOR (v:Value) ON (v.user_id)",
		"CREATE INDEX pattern_user_index IF NOT EXISTS FOR (p:Pattern) ON (p.user_id)",
		"CREATE INDEX persona_note_user_index IF NOT EXISTS FOR (pn:PersonaNote) ON (pn.user_id)",
	}

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return apperrors.NewGraphQueryFailed("ensure schema", err)
		}
	}

	r.logger.Info("Graph schema ensured")
	return nil
}
