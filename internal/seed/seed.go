package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	appModels "github.com/tharindu/vtcms/internal/app/models"
	appRepos "github.com/tharindu/vtcms/internal/app/repositories"
	"github.com/tharindu/vtcms/internal/config"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
	"github.com/tharindu/vtcms/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// CreateDefaultData provisions the initial admin account so a fresh
// deployment can be logged into. It is safe to run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	if cfg.Seed.AdminPassword == "" {
		logger.Info().Msg("No seed admin password configured, skipping admin seeding")
		return nil
	}

	exists, err := userRepo.EmailExists(ctx, cfg.Seed.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		logger.Debug().Str("email", cfg.Seed.AdminEmail).Msg("Admin account already present")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), 12)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Email:     cfg.Seed.AdminEmail,
		Password:  string(hash),
		FirstName: "System",
		LastName:  "Administrator",
		RoleType:  appModels.RoleAdmin,
		IsActive:  true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		// A concurrent instance may have seeded first.
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return err
	}

	logger.Info().Str("email", admin.Email).Msg("Seeded default admin account")
	return nil
}
