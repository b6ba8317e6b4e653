package handlers

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/velora/backend/internal/models"
	"github.com/velora/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// getUserIDFromContext returns the authenticated user's hex id, or "" when
// the request carries no identity.
func getUserIDFromContext(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

// compactCache memoizes compact user lookups while shaping one response, so
// enriching a page of comments or notifications hits each author once.
type compactCache struct {
	repo  repositories.UserRepository
	cache map[primitive.ObjectID]models.UserCompact
}

func newCompactCache(repo repositories.UserRepository) *compactCache {
	return &compactCache{repo: repo, cache: make(map[primitive.ObjectID]models.UserCompact)}
}

// get returns the compact shape for id; unknown users yield a zero value with
// only the id set, mirroring a dangling reference in the store.
func (cc *compactCache) get(ctx context.Context, id primitive.ObjectID) models.UserCompact {
	if compact, ok := cc.cache[id]; ok {
		return compact
	}
	compact := models.UserCompact{ID: id}
	if user, err := cc.repo.GetUserByID(ctx, id.Hex()); err == nil {
		compact = user.ToCompact()
	}
	cc.cache[id] = compact
	return compact
}

// containsID reports whether id is present in ids
func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
