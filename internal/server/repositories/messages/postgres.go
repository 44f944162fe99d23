// Package messages provides read access to the messages table.
package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SentBy returns messages from username with the recipient profile attached.
// It does not check that username exists.
func (r *PostgresRepository) SentBy(ctx context.Context, username string) ([]models.SentMessage, error) {
	query :=
		`SELECT m.id, u.username, u.first_name, u.last_name, u.phone, m.body, m.sent_at, m.read_at
		 FROM messages AS m
		 JOIN users AS u ON m.to_username = u.username
		 WHERE m.from_username = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.SentMessage
	for rows.Next() {
		var (
			m      models.SentMessage
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID, &m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
			&m.Body, &m.SentAt, &readAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.ReadAt = dbx.NullTimePtr(readAt)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// ReceivedBy returns messages to username with the sender profile attached.
func (r *PostgresRepository) ReceivedBy(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	query :=
		`SELECT m.id, u.username, u.first_name, u.last_name, u.phone, m.body, m.sent_at, m.read_at
		 FROM messages AS m
		 JOIN users AS u ON m.from_username = u.username
		 WHERE m.to_username = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.ReceivedMessage
	for rows.Next() {
		var (
			m      models.ReceivedMessage
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID, &m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
			&m.Body, &m.SentAt, &readAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.ReadAt = dbx.NullTimePtr(readAt)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
