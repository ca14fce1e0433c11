package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sage-clone/backend/internal/graphrag"
	apperrors "sage-clone/backend/pkg/errors"
)

// ProbeCategory counts stored items for the owner that carry an embedding.
// Items without an embedding cannot be retrieved and are not counted.
func (r *Repository) ProbeCategory(ctx context.Context, category graphrag.Category, ownerID string) (int, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	cfg := category.Config()
	query := fmt.Sprintf(`
		MATCH (n:%s {user_id: $user_id})
		WHERE n.%s IS NOT NULL
		RETURN count(n) as count
	`, cfg.NodeLabel, cfg.EmbeddingProperty)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"user_id": ownerID,
	})
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("probe "+cfg.IndexName, err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("probe "+cfg.IndexName, err)
	}

	return getInt(record, "count", 0), nil
}

// SearchCategory runs a vector similarity search against the category's index,
// restricted to nodes owned by the given user. Results come back ordered by
// descending similarity; nodes with empty content are skipped.
func (r *Repository) SearchCategory(ctx context.Context, category graphrag.Category, ownerID string, vector []float32, topK int) ([]graphrag.RetrievedItem, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	cfg := category.Config()
	query := fmt.Sprintf(`
		CALL db.index.vector.queryNodes($index_name, $top_k, $query_embedding)
		YIELD node, score
		WHERE node.user_id = $user_id
		RETURN node.%s as content,
		       node.user_id as user_id,
		       node.timestamp as timestamp,
		       score
		ORDER BY score DESC
	`, cfg.ContentProperty)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"index_name":      cfg.IndexName,
		"top_k":           topK,
		"query_embedding": toFloat64Slice(vector),
		"user_id":         ownerID,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("search "+cfg.IndexName, err)
	}

	var items []graphrag.RetrievedItem
	for result.Next(ctx) {
		record := result.Record()
		content := strings.TrimSpace(getString(record, "content", ""))
		if content == "" {
			continue
		}
		items = append(items, graphrag.RetrievedItem{
			Content:         content,
			OwnerID:         getString(record, "user_id", ownerID),
			Timestamp:       getTime(record, "timestamp", time.Time{}),
			SimilarityScore: getFloat64(record, "score", 0.0),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("search "+cfg.IndexName, err)
	}

	r.logger.Debug("Vector search completed",
		zap.String("index", cfg.IndexName),
		zap.String("user_id", ownerID),
		zap.Int("results", len(items)),
	)

	return items, nil
}

// EnsureVectorIndexes creates the vector index for every category if it does
// not already exist. Safe to call on every startup.
func (r *Repository) EnsureVectorIndexes(ctx context.Context, dimensions int) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	for _, category := range graphrag.AllCategories {
		cfg := category.Config()

		_, err := session.Run(ctx, vectorIndexStatement(cfg, dimensions), nil)
		if err != nil {
			return apperrors.NewGraphQueryFailed("create index "+cfg.IndexName, err)
		}

		r.logger.Info("Vector index ensured",
			zap.String("index", cfg.IndexName),
			zap.String("label", cfg.NodeLabel),
		)
	}

	return nil
}

// Schema commands do not accept query parameters, so the dimension count is
// interpolated into the statement like the label and property names.
func vectorIndexStatement(cfg graphrag.IndexConfig, dimensions int) string {
	return fmt.Sprintf(`
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (n:%s) ON (n.%s)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: %d,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}
	`, cfg.IndexName, cfg.NodeLabel, cfg.EmbeddingProperty, dimensions)
}

// The driver only serializes []float64 parameters cleanly into Neo4j list
// values, so vectors are widened before being bound.
func toFloat64Slice(vector []float32) []float64 {
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}
