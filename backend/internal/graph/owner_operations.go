package graph

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sage-clone/backend/internal/graphrag"
	apperrors "sage-clone/backend/pkg/errors"
)

// Resolve looks up an owner by id
func (r *Repository) Resolve(ctx context.Context, ownerID string) (*graphrag.Owner, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $user_id})
		RETURN u.id as id, u.name as name
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"user_id": ownerID,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("resolve user", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewGraphQueryFailed("resolve user", err)
		}
		return nil, apperrors.NewOwnerNotFound(ownerID)
	}

	record := result.Record()
	return &graphrag.Owner{
		ID:   getString(record, "id", ownerID),
		Name: getString(record, "name", "Unknown"),
	}, nil
}

// CreateUser creates a new user node with a generated id
func (r *Repository) CreateUser(ctx context.Context, name string) (*graphrag.Owner, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	userID := uuid.New().String()

	query := `
		CREATE (u:User {
			id: $user_id,
			name: $name,
			created_at: datetime()
		})
		RETURN u.id as id, u.name as name
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"user_id": userID,
		"name":    name,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("create user", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("create user", err)
	}

	r.logger.Info("User created",
		zap.String("user_id", userID),
		zap.String("name", name),
	)

	return &graphrag.Owner{
		ID:   getString(record, "id", userID),
		Name: getString(record, "name", name),
	}, nil
}

// GetOrCreateUser resolves the owner, creating the node when it does not
// exist yet. Used by the chat path where a first message may arrive before
// any explicit signup.
func (r *Repository) GetOrCreateUser(ctx context.Context, ownerID, name string) (*graphrag.Owner, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MERGE (u:User {id: $user_id})
		ON CREATE SET u.name = $name, u.created_at = datetime()
		RETURN u.id as id, u.name as name
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"user_id": ownerID,
		"name":    name,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get or create user", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get or create user", err)
	}

	return &graphrag.Owner{
		ID:   getString(record, "id", ownerID),
		Name: getString(record, "name", name),
	}, nil
}

// ListUsers returns every known user
func (r *Repository) ListUsers(ctx context.Context) ([]graphrag.Owner, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (u:User)
		RETURN u.id as id, u.name as name
		ORDER BY u.created_at
	`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("list users", err)
	}

	users := []graphrag.Owner{}
	for result.Next(ctx) {
		record := result.Record()
		users = append(users, graphrag.Owner{
			ID:   getString(record, "id", ""),
			Name: getString(record, "name", ""),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("list users", err)
	}

	return users, nil
}

// UpdateUserName renames an existing user
func (r *Repository) UpdateUserName(ctx context.Context, ownerID, name string) (*graphrag.Owner, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $user_id})
		SET u.name = $name
		RETURN u.id as id, u.name as name
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"user_id": ownerID,
		"name":    name,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("update user name", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewGraphQueryFailed("update user name", err)
		}
		return nil, apperrors.NewOwnerNotFound(ownerID)
	}

	record := result.Record()
	return &graphrag.Owner{
		ID:   getString(record, "id", ownerID),
		Name: getString(record, "name", name),
	}, nil
}
