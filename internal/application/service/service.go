package service

import (
	"context"
	"fmt"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// actorResolver looks up the current actor and enforces role requirements
type actorResolver struct {
	directory port.ActorDirectory
}

// resolve returns the actor or ErrForbidden when the directory does not know the id
func (r actorResolver) resolve(ctx context.Context, actorID string) (*entity.Actor, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: missing actor", entity.ErrForbidden)
	}

	actor, err := r.directory.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up actor: %w", err)
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: unknown actor %s", entity.ErrForbidden, actorID)
	}

	return actor, nil
}

// require resolves the actor and checks that it holds one of the roles
func (r actorResolver) require(ctx context.Context, actorID string, roles ...entity.Role) (*entity.Actor, error) {
	actor, err := r.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		if actor.Role == role {
			return actor, nil
		}
	}

	return nil, fmt.Errorf("%w: role %s may not perform this operation", entity.ErrForbidden, actor.Role)
}
