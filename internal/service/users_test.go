package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess, err := f.svc.Register(ctx, RegisterInput{
		Email:    "  Sari@Kampus.ac.id ",
		Username: "sari",
		Password: "rahasia1",
		Jurusan:  "Informatika",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "sari@kampus.ac.id", sess.User.Email)
	assert.Equal(t, models.RoleUser, sess.User.Role)

	login, err := f.svc.Login(ctx, LoginInput{Email: "SARI@kampus.ac.id", Password: "rahasia1"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	me, err := f.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "sari", me.Username)
}

func TestRegisterDuplicateEmailIgnoresCase(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Email: "budi@kampus.ac.id", Username: "budi", Password: "123456"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "BUDI@Kampus.AC.ID", Username: "budi2", Password: "123456"})
	assert.True(t, apierror.IsCode(err, apierror.ErrConflict), "got %v", err)
}

func TestCreateUserReportsDuplicateAsConflict(t *testing.T) {
	f := newFixture(t, nil)
	existing := f.user(t, "rara")

	err := createUser(f.db, &models.User{Email: existing.Email, Username: "rara2", PasswordHash: "x"})
	require.True(t, apierror.IsCode(err, apierror.ErrConflict))
	assert.Equal(t, "email already registered", apierror.From(err).Message)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, nil)

	tests := map[string]struct {
		in    RegisterInput
		field string
	}{
		"bad email":      {RegisterInput{Email: "nope", Username: "budi", Password: "123456"}, "email"},
		"short username": {RegisterInput{Email: "a@b.id", Username: "ab", Password: "123456"}, "username"},
		"short password": {RegisterInput{Email: "a@b.id", Username: "budi", Password: "123"}, "password"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in)
			require.True(t, apierror.IsCode(err, apierror.ErrValidation), "got %v", err)
			assert.Equal(t, tt.field, apierror.From(err).Field)
		})
	}
}

func TestRegisterBootstrapsAdmin(t *testing.T) {
	f := newFixture(t, nil)

	sess, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "Rektor@kampus.ac.id", Username: "rektor", Password: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	f := newFixture(t, nil)
	f.user(t, "citra")
	ctx := context.Background()

	_, wrongPassword := f.svc.Login(ctx, LoginInput{Email: "citra@kampus.ac.id", Password: "salah"})
	_, unknownEmail := f.svc.Login(ctx, LoginInput{Email: "ghost@kampus.ac.id", Password: "password123"})

	require.True(t, apierror.IsCode(wrongPassword, apierror.ErrInvalidCredentials))
	require.True(t, apierror.IsCode(unknownEmail, apierror.ErrInvalidCredentials))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticateRejects(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, token := range []string{"", "garbage"} {
		_, err := f.svc.Authenticate(ctx, token)
		assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))
	}

	u := f.user(t, "dewi")
	token, _, err := f.svc.tokens.Issue(u.ID, u.Role)
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.User{}, "id = ?", u.ID).Error)

	_, err = f.svc.Authenticate(ctx, token)
	assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))
}

func TestProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.user(t, "eko")
	f.post(t, u, "satu")
	f.post(t, u, "dua")

	prof, err := f.svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, prof.PostCount)

	name, jurusan := "eko_p", "Sipil"
	updated, err := f.svc.UpdateProfile(ctx, u, UpdateProfileInput{Username: &name, Jurusan: &jurusan})
	require.NoError(t, err)
	assert.Equal(t, "eko_p", updated.Username)
	assert.Equal(t, "Sipil", updated.Jurusan)
	assert.Equal(t, u.Email, updated.Email)

	blank := "  "
	_, err = f.svc.UpdateProfile(ctx, u, UpdateProfileInput{Username: &blank})
	assert.True(t, apierror.IsCode(err, apierror.ErrValidation))

	_, err = f.svc.GetProfile(ctx, "missing")
	assert.True(t, apierror.IsCode(err, apierror.ErrNotFound))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.user(t, "fajar")

	err := f.svc.ChangePassword(ctx, u, ChangePasswordInput{OldPassword: "wrong", NewPassword: "baru1234"})
	require.True(t, apierror.IsCode(err, apierror.ErrValidation))
	assert.Equal(t, "oldPassword", apierror.From(err).Field)

	require.NoError(t, f.svc.ChangePassword(ctx, u, ChangePasswordInput{OldPassword: "password123", NewPassword: "baru1234"}))

	_, err = f.svc.Login(ctx, LoginInput{Email: u.Email, Password: "password123"})
	assert.True(t, apierror.IsCode(err, apierror.ErrInvalidCredentials))
	_, err = f.svc.Login(ctx, LoginInput{Email: u.Email, Password: "baru1234"})
	assert.NoError(t, err)
}
