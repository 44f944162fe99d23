package messages

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// Repository reads messages joined with the counterpart's profile. Messages
// are written elsewhere.
type Repository interface {
	SentBy(ctx context.Context, username string) ([]models.SentMessage, error)
	ReceivedBy(ctx context.Context, username string) ([]models.ReceivedMessage, error)
}
