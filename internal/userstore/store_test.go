package userstore

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"testing"

	"dubbing-backend/internal/models"
	"dubbing-backend/internal/upstream"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMirrorClient struct {
	mock.Mock
}

func (m *MockMirrorClient) CreateUser(ctx context.Context, rec upstream.UserRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockMirrorClient) UpdateUser(ctx context.Context, rec upstream.UserRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockMirrorClient) GetUserByEmail(ctx context.Context, email string) (*upstream.UserRecord, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.UserRecord), args.Error(1)
}

func TestUserIDIsStablePerEmail(t *testing.T) {
	assert.Equal(t, UserID("Ada@Example.com "), UserID("ada@example.com"))
	assert.NotEqual(t, UserID("ada@example.com"), UserID("bob@example.com"))
}

func TestNopStore(t *testing.T) {
	var s Store = Nop{}
	ctx := context.Background()

	_, err := s.FindByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, s.Create(ctx, &models.User{}))
	assert.NoError(t, s.SetTargetLang(ctx, &models.User{}))
}

func TestMirrorFindByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		client := new(MockMirrorClient)
		id := uuid.New()
		client.On("GetUserByEmail", ctx, "ada@example.com").
			Return(&upstream.UserRecord{UserID: id.String(), Name: "Ada", Email: "ada@example.com", TargetLang: "de"}, nil)

		user, err := (&Mirror{Client: client}).FindByEmail(ctx, "ADA@example.com")

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "de", user.TargetLang)
	})

	t.Run("not found", func(t *testing.T) {
		client := new(MockMirrorClient)
		client.On("GetUserByEmail", ctx, "ada@example.com").
			Return(nil, &upstream.StatusError{Endpoint: "get-user", StatusCode: http.StatusNotFound})

		_, err := (&Mirror{Client: client}).FindByEmail(ctx, "ada@example.com")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("backend down", func(t *testing.T) {
		client := new(MockMirrorClient)
		client.On("GetUserByEmail", ctx, "ada@example.com").Return(nil, errors.New("connection refused"))

		_, err := (&Mirror{Client: client}).FindByEmail(ctx, "ada@example.com")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("non-uuid id falls back to derived id", func(t *testing.T) {
		client := new(MockMirrorClient)
		client.On("GetUserByEmail", ctx, "ada@example.com").
			Return(&upstream.UserRecord{UserID: "legacy-7", Email: "ada@example.com"}, nil)

		user, err := (&Mirror{Client: client}).FindByEmail(ctx, "ada@example.com")

		require.NoError(t, err)
		assert.Equal(t, UserID("ada@example.com"), user.ID)
	})
}

func TestMirrorWrites(t *testing.T) {
	ctx := context.Background()
	client := new(MockMirrorClient)
	user := &models.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", TargetLang: "es"}
	rec := upstream.RecordFromUser(user)
	client.On("CreateUser", ctx, rec).Return(nil)
	client.On("UpdateUser", ctx, rec).Return(nil)

	s := &Mirror{Client: client}
	require.NoError(t, s.Create(ctx, user))
	require.NoError(t, s.SetTargetLang(ctx, user))

	client.AssertExpectations(t)
}

func TestMirrorSetTargetLangMissingUser(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "ada@example.com", TargetLang: "fr"}
	rec := upstream.RecordFromUser(user)

	t.Run("404 is not found", func(t *testing.T) {
		client := new(MockMirrorClient)
		client.On("UpdateUser", ctx, rec).
			Return(&upstream.StatusError{Endpoint: "update-user", StatusCode: http.StatusNotFound, Body: "404 page not found"})

		err := (&Mirror{Client: client}).SetTargetLang(ctx, user)

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("other failures pass through", func(t *testing.T) {
		client := new(MockMirrorClient)
		client.On("UpdateUser", ctx, rec).
			Return(&upstream.StatusError{Endpoint: "update-user", StatusCode: http.StatusInternalServerError})

		err := (&Mirror{Client: client}).SetTargetLang(ctx, user)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})
}

// TestPostgresStore runs against a real database when TEST_DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	s := &Postgres{DB: db}
	require.NoError(t, s.EnsureSchema(ctx))

	email := uuid.NewString() + "@example.com"
	user := &models.User{ID: UserID(email), Name: "Test", Email: email, TargetLang: "en"}
	require.NoError(t, s.Create(ctx, user))
	require.NoError(t, s.Create(ctx, user), "second create is a no-op")

	user.TargetLang = "ja"
	require.NoError(t, s.SetTargetLang(ctx, user))

	got, err := s.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "ja", got.TargetLang)

	_, err = s.FindByEmail(ctx, "missing-"+email)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = db.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	require.NoError(t, err)
}
