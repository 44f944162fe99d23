// Package services contains server-side business logic. UserDirectory maps
// directory operations onto the users and messages repositories and keeps
// stored passwords hashed.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/cryptox"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/metrics"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
)

// UserDirectory provides every user-account operation of the service.
// Each call issues its own query sequence, so a single instance may be used
// from many goroutines.
type UserDirectory struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	logger      logging.Logger
}

func NewUserDirectory(db *sql.DB, m repomanager.RepositoryManager, h cryptox.PasswordHasher, l logging.Logger) *UserDirectory {
	return &UserDirectory{
		db:          db,
		repomanager: m,
		hasher:      h,
		logger:      l.With("module", "user_directory"),
	}
}

// Register hashes password and stores a new user whose join and last-login
// times are the server's current time. A taken username yields an error
// matching common.ErrorAlreadyExists.
func (s *UserDirectory) Register(ctx context.Context, username, password, firstName, lastName, phone string) (*models.RegisteredUser, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.NewUser{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Info(ctx, "username already taken", "username", username)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	metrics.Registrations.Inc()
	s.logger.Info(ctx, "user registered", "username", username)
	return user, nil
}

// Authenticate reports whether password matches the stored hash for
// username. An unknown username is a false result, never an error.
//
// A true result always refreshes last_login_at in the same transaction that
// read the hash; callers cannot verify credentials without that write.
func (s *UserDirectory) Authenticate(ctx context.Context, username, password string) (bool, error) {
	outcome := metrics.AuthError

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		hash, err := repo.GetPasswordHash(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				outcome = metrics.AuthUnknownUser
				return nil
			}
			return err
		}

		if !s.hasher.Compare(hash, password) {
			outcome = metrics.AuthMismatch
			return nil
		}

		if err := repo.TouchLastLogin(ctx, username); err != nil {
			return fmt.Errorf("error updating login timestamp: %w", err)
		}
		outcome = metrics.AuthSuccess
		return nil
	})

	if err != nil {
		outcome = metrics.AuthError
	}
	metrics.Authentications.WithLabelValues(outcome).Inc()

	if err != nil {
		s.logger.Error(ctx, "authentication failed", "username", username, "error", err)
		return false, err
	}
	if outcome != metrics.AuthSuccess {
		s.logger.Debug(ctx, "credentials rejected", "username", username, "reason", outcome)
		return false, nil
	}
	return true, nil
}

// UpdateLoginTimestamp sets last_login_at to now. It fails with
// common.ErrorNotFound when no such user exists.
func (s *UserDirectory) UpdateLoginTimestamp(ctx context.Context, username string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.TouchLastLogin(ctx, username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("user %q: %w", username, err)
		}
		return err
	}
	return nil
}

// All lists every user. Order is whatever storage returns.
func (s *UserDirectory) All(ctx context.Context) ([]models.UserSummary, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

func (s *UserDirectory) Get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, err)
		}
		return nil, err
	}
	return user, nil
}

// MessagesFrom returns the messages username sent, each with the recipient's
// profile. The user must exist even if no message references them.
func (s *UserDirectory) MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.repomanager.Messages(s.db).SentBy(ctx, username)
}

// MessagesTo returns the messages username received, each with the sender's
// profile.
func (s *UserDirectory) MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.repomanager.Messages(s.db).ReceivedBy(ctx, username)
}

// requireUser runs as its own query before the join. A user removed between
// the two statements is not detected.
func (s *UserDirectory) requireUser(ctx context.Context, username string) error {
	ok, err := s.repomanager.Users(s.db).Exists(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug(ctx, "unknown user", "username", username)
		return fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
	}
	return nil
}
