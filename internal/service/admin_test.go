package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/models"
)

func TestAdminRequiresRole(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.user(t, "hana")

	_, err := f.svc.Stats(ctx, u)
	assert.True(t, apierror.IsCode(err, apierror.ErrForbidden))
	_, err = f.svc.ListUsers(ctx, u, ListUsersQuery{})
	assert.True(t, apierror.IsCode(err, apierror.ErrForbidden))
	_, err = f.svc.Stats(ctx, nil)
	assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))
	err = f.svc.DeleteUser(ctx, u, u.ID)
	assert.True(t, apierror.IsCode(err, apierror.ErrForbidden))
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	admin, a, b := f.admin(t, "admin"), f.user(t, "iwan"), f.user(t, "jeni")
	p := f.post(t, a, "satu")
	f.post(t, b, "dua")

	_, err := f.svc.React(ctx, b, p.ID, models.InteractionLike)
	require.NoError(t, err)
	_, err = f.svc.React(ctx, admin, p.ID, models.InteractionDislike)
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, b, p.ID, CreateCommentInput{Content: "ok"})
	require.NoError(t, err)

	st, err := f.svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Users:         3,
		Admins:        1,
		Posts:         2,
		Comments:      1,
		Likes:         1,
		Dislikes:      1,
		PostsLastWeek: 2,
	}, *st)
}

func TestListUsersAndSetRole(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	admin := f.admin(t, "admin")
	kurnia := f.user(t, "kurnia")
	f.user(t, "lukman")

	list, err := f.svc.ListUsers(ctx, admin, ListUsersQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)

	found, err := f.svc.ListUsers(ctx, admin, ListUsersQuery{Search: "KURN"})
	require.NoError(t, err)
	require.Len(t, found.Users, 1)
	assert.Equal(t, kurnia.ID, found.Users[0].ID)

	promoted, err := f.svc.SetUserRole(ctx, admin, kurnia.ID, SetRoleInput{Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	var stored models.User
	require.NoError(t, f.db.Take(&stored, "id = ?", kurnia.ID).Error)
	assert.True(t, stored.IsAdmin())

	_, err = f.svc.SetUserRole(ctx, admin, admin.ID, SetRoleInput{Role: models.RoleUser})
	assert.True(t, apierror.IsCode(err, apierror.ErrForbidden))

	_, err = f.svc.SetUserRole(ctx, admin, kurnia.ID, SetRoleInput{Role: "owner"})
	assert.True(t, apierror.IsCode(err, apierror.ErrValidation))

	_, err = f.svc.SetUserRole(ctx, admin, "missing", SetRoleInput{Role: models.RoleUser})
	assert.True(t, apierror.IsCode(err, apierror.ErrNotFound))
}

func TestDeleteUserCascadesAndRecounts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	admin, leaving, staying := f.admin(t, "admin"), f.user(t, "maya"), f.user(t, "nanda")

	own := f.post(t, leaving, "post maya")
	other := f.post(t, staying, "post nanda")

	_, err := f.svc.React(ctx, leaving, other.ID, models.InteractionLike)
	require.NoError(t, err)
	_, err = f.svc.React(ctx, admin, other.ID, models.InteractionLike)
	require.NoError(t, err)
	_, err = f.svc.React(ctx, staying, own.ID, models.InteractionDislike)
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, leaving, other.ID, CreateCommentInput{Content: "dari maya"})
	require.NoError(t, err)
	require.Equal(t, 2, f.reload(t, other.ID).LikeCount)

	err = f.svc.DeleteUser(ctx, admin, admin.ID)
	require.True(t, apierror.IsCode(err, apierror.ErrForbidden))

	require.NoError(t, f.svc.DeleteUser(ctx, admin, leaving.ID))

	var n int64
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", leaving.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&models.Post{}).Where("id = ?", own.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&models.Comment{}).Where("user_id = ?", leaving.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&models.Interaction{}).Where("user_id = ? OR post_id = ?", leaving.ID, own.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&models.Notification{}).Where("actor_id = ? OR user_id = ?", leaving.ID, leaving.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.Equal(t, 1, f.reload(t, other.ID).LikeCount)

	err = f.svc.DeleteUser(ctx, admin, leaving.ID)
	assert.True(t, apierror.IsCode(err, apierror.ErrNotFound))
}

func TestSetRoleByEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.user(t, "oki")

	promoted, err := f.svc.SetRoleByEmail(ctx, "OKI@kampus.ac.id", "admin")
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	demoted, err := f.svc.SetRoleByEmail(ctx, u.Email, "user")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, demoted.Role)

	_, err = f.svc.SetRoleByEmail(ctx, "ghost@kampus.ac.id", "admin")
	assert.True(t, apierror.IsCode(err, apierror.ErrNotFound))
}
