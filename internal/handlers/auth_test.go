package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/teamboard/teamboard-api/internal/models"
)

type fakeUserRepo struct {
	createErr error
}

func (f *fakeUserRepo) CreateUser(_ context.Context, email, displayName, _ string) (models.User, error) {
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	return models.User{ID: "u1", Email: email, DisplayName: displayName, IsActive: true}, nil
}

func (f *fakeUserRepo) AuthenticateUser(_ context.Context, _, _ string) (models.User, error) {
	return models.User{}, errors.New("not implemented")
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, _ string) (models.User, error) {
	return models.User{}, errors.New("not implemented")
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, _ string) (models.User, error) {
	return models.User{}, errors.New("not implemented")
}

func signUpWith(repo *fakeUserRepo, body string) *httptest.ResponseRecorder {
	h := &AuthHandler{
		userRepository: repo,
		jwtSecret:      "secret",
		logger:         zerolog.Nop(),
	}
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)
	return rec
}

func TestSignUpDuplicateEmailConflicts(t *testing.T) {
	repo := &fakeUserRepo{createErr: &pq.Error{Code: "23505"}}
	rec := signUpWith(repo, `{"email":"user@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignUpWrappedDuplicateEmailConflicts(t *testing.T) {
	repo := &fakeUserRepo{createErr: errors.Wrap(&pq.Error{Code: "23505"}, "insert user")}
	rec := signUpWith(repo, `{"email":"user@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignUpOtherErrorIsBadRequest(t *testing.T) {
	repo := &fakeUserRepo{createErr: errors.New("connection reset")}
	rec := signUpWith(repo, `{"email":"user@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignUpSuccess(t *testing.T) {
	rec := signUpWith(&fakeUserRepo{}, `{"email":"user@example.com","password":"secret","display_name":"User"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
