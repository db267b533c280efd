package auth

import (
	"context"
	"errors"
	"testing"

	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/database"
	"slackvite/internal/infrastructure/slack"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeProvider maps codes to tokens and tokens to identities.
type fakeProvider struct {
	identities map[string]*slack.Identity
	err        error
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + code, nil
}

func (f *fakeProvider) Identity(ctx context.Context, accessToken string) (*slack.Identity, error) {
	id, ok := f.identities[accessToken]
	if !ok {
		return nil, errors.New("invalid_auth")
	}
	return id, nil
}

func identity(userID, name, teamID string) *slack.Identity {
	id := &slack.Identity{}
	id.User.ID = userID
	id.User.Name = name
	id.Team.ID = teamID
	return id
}

var team = &slack.Team{ID: "T1", Name: "Gophers"}

func setupAuth(t *testing.T) (*Service, *fakeProvider, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	p := &fakeProvider{identities: map[string]*slack.Identity{}}
	return &Service{DB: db, Provider: p}, p, db
}

func countMembers(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&domain.Member{}).Count(&n).Error)
	return n
}

func TestLogin_CreatesMemberOnFirstLogin(t *testing.T) {
	svc, p, db := setupAuth(t)
	p.identities["token-c1"] = identity("U1", "alice", "T1")

	m, err := svc.Login(context.Background(), "c1", team)
	require.NoError(t, err)
	assert.True(t, m.Active)
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "U1", *m.SlackID)
	assert.Equal(t, "alice", m.DisplayName)
	assert.Equal(t, "token-c1", *m.SlackAccessToken)
	assert.Equal(t, "T1", *m.SlackTeam)
	assert.Equal(t, int64(1), countMembers(t, db))
}

func TestLogin_SecondLoginRefreshesSameMember(t *testing.T) {
	svc, p, db := setupAuth(t)
	p.identities["token-c1"] = identity("U1", "alice", "T1")
	p.identities["token-c2"] = identity("U1", "alice.renamed", "T1")

	first, err := svc.Login(context.Background(), "c1", team)
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "c2", team)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), countMembers(t, db))

	var stored domain.Member
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, "alice.renamed", stored.DisplayName)
	assert.Equal(t, "token-c2", *stored.SlackAccessToken)
}

func TestLogin_ForeignTeamWritesNothing(t *testing.T) {
	svc, p, db := setupAuth(t)
	p.identities["token-c1"] = identity("U1", "alice", "T1")
	p.identities["token-c2"] = identity("U1", "mallory", "T9")
	p.identities["token-c3"] = identity("U2", "bob", "T9")

	first, err := svc.Login(context.Background(), "c1", team)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "c2", team)
	assert.ErrorIs(t, err, ErrTeamMismatch)
	_, err = svc.Login(context.Background(), "c3", team)
	assert.ErrorIs(t, err, ErrTeamMismatch)

	assert.Equal(t, int64(1), countMembers(t, db))
	var stored domain.Member
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, "alice", stored.DisplayName)
	assert.Equal(t, "token-c1", *stored.SlackAccessToken)
}

func TestLogin_DoesNotClaimApprovalMember(t *testing.T) {
	svc, p, db := setupAuth(t)
	appID := uint(1)
	require.NoError(t, db.Create(&domain.Member{Active: true, ApplicationID: &appID}).Error)
	p.identities["token-c1"] = identity("U1", "alice", "T1")

	m, err := svc.Login(context.Background(), "c1", team)
	require.NoError(t, err)
	assert.Nil(t, m.ApplicationID)
	assert.Equal(t, int64(2), countMembers(t, db))
}

func TestLogin_InactiveMemberRefused(t *testing.T) {
	svc, p, db := setupAuth(t)
	slackID := "U1"
	m := &domain.Member{Active: true, SlackID: &slackID, DisplayName: "old"}
	require.NoError(t, db.Create(m).Error)
	require.NoError(t, db.Model(m).Update("active", false).Error)
	p.identities["token-c1"] = identity("U1", "alice", "T1")

	got, err := svc.Login(context.Background(), "c1", team)
	assert.ErrorIs(t, err, ErrInactiveMember)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.DisplayName)
}

func TestLogin_ExchangeError(t *testing.T) {
	svc, p, db := setupAuth(t)
	p.err = errors.New("invalid_code")

	_, err := svc.Login(context.Background(), "c1", team)
	assert.EqualError(t, err, "invalid_code")
	assert.Zero(t, countMembers(t, db))
}

func TestCurrentMember(t *testing.T) {
	svc, p, db := setupAuth(t)
	p.identities["token-c1"] = identity("U1", "alice", "T1")
	m, err := svc.Login(context.Background(), "c1", team)
	require.NoError(t, err)

	got, err := svc.CurrentMember(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = svc.CurrentMember(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = svc.CurrentMember(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	appID := uint(7)
	orphan := &domain.Member{Active: true, ApplicationID: &appID}
	require.NoError(t, db.Create(orphan).Error)
	_, err = svc.CurrentMember(context.Background(), orphan.ID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
