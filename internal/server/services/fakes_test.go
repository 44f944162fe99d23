package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	messagesrepo "github.com/dmitrijs2005/messagely/internal/server/repositories/messages"
	usersrepo "github.com/dmitrijs2005/messagely/internal/server/repositories/users"
)

// store is an in-memory stand-in for the users and messages tables.
type store struct {
	users    map[string]*storedUser
	order    []string
	messages []storedMessage
	now      time.Time

	// injected failures
	listErr   error
	existsErr error
	hashErr   error
	touchErr  error
}

type storedUser struct {
	models.NewUser
	joinAt    time.Time
	lastLogin time.Time
}

type storedMessage struct {
	id       int64
	from, to string
	body     string
	sentAt   time.Time
	readAt   *time.Time
}

func newStore() *store {
	return &store{
		users: map[string]*storedUser{},
		now:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick advances the server clock so each write gets a later timestamp.
func (s *store) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *store) addMessage(from, to, body string) int64 {
	id := int64(len(s.messages) + 1)
	s.messages = append(s.messages, storedMessage{id: id, from: from, to: to, body: body, sentAt: s.tick()})
	return id
}

func (s *store) profile(username string) models.UserProfile {
	u := s.users[username]
	return models.UserProfile{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

type fakeUsers struct{ s *store }

func (f *fakeUsers) Create(_ context.Context, u *models.NewUser) (*models.RegisteredUser, error) {
	if _, ok := f.s.users[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	now := f.s.tick()
	f.s.users[u.Username] = &storedUser{NewUser: *u, joinAt: now, lastLogin: now}
	f.s.order = append(f.s.order, u.Username)
	return &models.RegisteredUser{
		Username:  u.Username,
		Password:  u.PasswordHash,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}, nil
}

func (f *fakeUsers) GetPasswordHash(_ context.Context, username string) (string, error) {
	if f.s.hashErr != nil {
		return "", f.s.hashErr
	}
	u, ok := f.s.users[username]
	if !ok {
		return "", common.ErrorNotFound
	}
	return u.PasswordHash, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, username string) error {
	if f.s.touchErr != nil {
		return f.s.touchErr
	}
	u, ok := f.s.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	u.lastLogin = f.s.tick()
	return nil
}

func (f *fakeUsers) List(context.Context) ([]models.UserSummary, error) {
	if f.s.listErr != nil {
		return nil, f.s.listErr
	}
	var out []models.UserSummary
	for _, name := range f.s.order {
		u := f.s.users[name]
		out = append(out, models.UserSummary{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName})
	}
	return out, nil
}

func (f *fakeUsers) Get(_ context.Context, username string) (*models.User, error) {
	u, ok := f.s.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	lastLogin := u.lastLogin
	return &models.User{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinAt:      u.joinAt,
		LastLoginAt: &lastLogin,
	}, nil
}

func (f *fakeUsers) Exists(_ context.Context, username string) (bool, error) {
	if f.s.existsErr != nil {
		return false, f.s.existsErr
	}
	_, ok := f.s.users[username]
	return ok, nil
}

type fakeMessages struct {
	s     *store
	calls int
}

func (f *fakeMessages) SentBy(_ context.Context, username string) ([]models.SentMessage, error) {
	f.calls++
	var out []models.SentMessage
	for _, m := range f.s.messages {
		if m.from == username {
			out = append(out, models.SentMessage{ID: m.id, ToUser: f.s.profile(m.to), Body: m.body, SentAt: m.sentAt, ReadAt: m.readAt})
		}
	}
	return out, nil
}

func (f *fakeMessages) ReceivedBy(_ context.Context, username string) ([]models.ReceivedMessage, error) {
	f.calls++
	var out []models.ReceivedMessage
	for _, m := range f.s.messages {
		if m.to == username {
			out = append(out, models.ReceivedMessage{ID: m.id, FromUser: f.s.profile(m.from), Body: m.body, SentAt: m.sentAt, ReadAt: m.readAt})
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	u *fakeUsers
	m *fakeMessages
}

func newFakeRepoManager(s *store) *fakeRepoManager {
	return &fakeRepoManager{u: &fakeUsers{s: s}, m: &fakeMessages{s: s}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeRepoManager) Messages(dbx.DBTX) messagesrepo.Repository    { return m.m }
