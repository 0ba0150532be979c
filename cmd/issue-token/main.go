// Command issue-token mints bearer tokens for development.
// With -register it also creates or updates the actor in the directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/garyjia/lecturer-claims/internal/config"
	"github.com/garyjia/lecturer-claims/internal/container"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file; empty for environment only")
	envFile := flag.String("env-file", ".env", "optional .env file loaded before the config")
	actorID := flag.String("actor", "", "actor id to put in the token subject (required)")
	register := flag.Bool("register", false, "create or update the actor before issuing the token")
	name := flag.String("name", "", "display name used with -register")
	role := flag.String("role", string(entity.RoleLecturer), "role used with -register: LECTURER, PROGRAMME_COORDINATOR, ACADEMIC_MANAGER or HR")
	flag.Parse()

	if err := run(*configPath, *envFile, *actorID, *register, *name, *role); err != nil {
		fmt.Fprintf(os.Stderr, "issue-token: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile, actorID string, register bool, name, role string) error {
	if strings.TrimSpace(actorID) == "" {
		return fmt.Errorf("-actor is required")
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := utils.NewCLILogger("warn")
	if err != nil {
		return err
	}
	defer logger.Sync()

	cc := cfg.ToContainerConfig()

	if register {
		if err := registerActor(cc, logger, &entity.Actor{
			ID:          actorID,
			DisplayName: name,
			Role:        entity.Role(strings.ToUpper(role)),
		}); err != nil {
			return err
		}
	}

	tokens, err := container.ProvideTokenService(&cc.Auth)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(actorID)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

func registerActor(cfg *container.Config, logger *zap.Logger, actor *entity.Actor) error {
	// A one-shot registration has no use for the background sweeper
	cfg.Storage.SweepInterval = 0

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return err
	}
	defer c.Close()

	if err := c.Repositories().Actors.Upsert(ctx, actor); err != nil {
		return fmt.Errorf("failed to register actor: %w", err)
	}

	fmt.Fprintf(os.Stderr, "registered %s as %s\n", actor.ID, actor.Role)
	return nil
}
