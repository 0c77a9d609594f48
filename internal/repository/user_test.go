package repository

import (
	"context"
	"regexp"
	"testing"

	"reelroom/internal/models"
	"reelroom/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_SearchQueryShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE full_name_fold LIKE $1 ESCAPE '\' AND username_fold LIKE $2 ESCAPE '\'`)).
		WithArgs(`%émile50\%%`, `%émile50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	users, err := repo.Search(context.Background(), "ÉMILE50%", false)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsernameMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","username"`)).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetByUsername(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "alice99", "Alice王")
	testutil.CreateUser(t, db, "bob", "Alison")

	all, err := repo.Search(ctx, "ALI", false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice99", all[0].Username)

	any, err := repo.Search(ctx, "ali", true)
	require.NoError(t, err)
	assert.Len(t, any, 2)

	wild, err := repo.Search(ctx, "%", true)
	require.NoError(t, err)
	assert.Empty(t, wild)
}

func TestUserRepository_SearchFoldsNonASCII(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	emile := testutil.CreateUser(t, db, "emile", "Émile Zola")
	testutil.CreateUser(t, db, "zoe", "Zoë Kravitz")

	got, err := repo.Search(ctx, "émile", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "emile", got[0].Username)

	got, err = repo.Search(ctx, "ZOË", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "zoe", got[0].Username)

	// A renamed user is found under the new name only.
	user, err := repo.GetByID(ctx, emile.ID)
	require.NoError(t, err)
	user.FullName = "Ève Curie"
	require.NoError(t, repo.UpdateProfile(ctx, user))

	got, err = repo.Search(ctx, "ève", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	got, err = repo.Search(ctx, "émile", false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserRepository_UpdateProfileKeepsPassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice99", "Alice")
	testutil.CreateUser(t, db, "bob", "Bob")

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	got.Bio = "cinephile"
	require.NoError(t, repo.UpdateProfile(ctx, got))

	var stored models.User
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.Equal(t, "cinephile", stored.Bio)
	assert.Equal(t, alice.Password, stored.Password)

	got.Username = "bob"
	err = repo.UpdateProfile(ctx, got)
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_ListSuggested(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "me", "Me")
	followed := testutil.CreateUser(t, db, "followed", "Followed")
	testutil.CreateUser(t, db, "stranger", "Stranger")

	_, _, err := follows.Toggle(ctx, me.ID, followed.ID)
	require.NoError(t, err)

	users, err := repo.ListSuggested(ctx, me.ID, 4)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "stranger", users[0].Username)
}
