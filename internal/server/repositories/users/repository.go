package users

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.NewUser) (*models.RegisteredUser, error)
	GetPasswordHash(ctx context.Context, username string) (string, error)
	TouchLastLogin(ctx context.Context, username string) error
	List(ctx context.Context) ([]models.UserSummary, error)
	Get(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
}
