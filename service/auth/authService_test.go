package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilm2002/booze-and-books-sub001/model"
	userrepo "github.com/sahilm2002/booze-and-books-sub001/repository/user"
	"github.com/sahilm2002/booze-and-books-sub001/util/hash"
	jwtutil "github.com/sahilm2002/booze-and-books-sub001/util/jwt"

	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, errors.New("not found")
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, errors.New("not found")
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	s := New(m, "test_secret")

	u, token, err := s.Register(ctx, model.RegisterReq{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Username: "ada", Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.NotEmpty(t, token)
	require.True(t, hash.Check(u.PasswordHash, "hunter22"))

	claims, err := jwtutil.ParseAuth("Bearer "+token, "test_secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	hashed, err := hash.HashPassword("hunter22")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	s := New(m, "test_secret")

	u, token, err := s.Login(ctx, model.LoginReq{Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, token)

	// wrong secret must not verify
	_, err = jwtutil.ParseAuth(token, "other_secret")
	require.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	hashed, err := hash.HashPassword("hunter22")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	s := New(m, "test_secret")

	_, _, err = s.Login(ctx, model.LoginReq{Email: "ada@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("no rows")
		},
	}
	s := New(m, "test_secret")

	_, _, err := s.Login(ctx, model.LoginReq{Email: "nobody@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
