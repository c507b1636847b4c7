package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/ws"
)

func TestReactTransitions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, fan := f.user(t, "nina"), f.user(t, "oki")
	p := f.post(t, owner, "toilet rusak")

	res, err := f.svc.React(ctx, fan, p.ID, models.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, ReactionResult{PostID: p.ID, LikeCount: 1, MyReaction: models.InteractionLike}, *res)

	_, err = f.svc.React(ctx, fan, p.ID, models.InteractionLike)
	require.True(t, apierror.IsCode(err, apierror.ErrConflict))
	assert.Equal(t, "post already liked", apierror.From(err).Message)
	assert.Equal(t, 1, f.reload(t, p.ID).LikeCount)

	res, err = f.svc.React(ctx, fan, p.ID, models.InteractionDislike)
	require.NoError(t, err)
	assert.Equal(t, 0, res.LikeCount)
	assert.Equal(t, 1, res.DislikeCount)

	_, err = f.svc.React(ctx, fan, p.ID, models.InteractionDislike)
	require.True(t, apierror.IsCode(err, apierror.ErrConflict))
	assert.Equal(t, "post already disliked", apierror.From(err).Message)

	var rows int64
	require.NoError(t, f.db.Model(&models.Interaction{}).Where("post_id = ?", p.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	updates := f.events.ofType(ws.EventReactionUpdated)
	require.Len(t, updates, 2)
	assert.Empty(t, updates[0].UserID)
}

func TestReactRejects(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.user(t, "putri")
	p := f.post(t, u, "x")

	_, err := f.svc.React(ctx, nil, p.ID, models.InteractionLike)
	assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))

	_, err = f.svc.React(ctx, u, p.ID, "love")
	assert.True(t, apierror.IsCode(err, apierror.ErrValidation))

	res, err := f.svc.React(ctx, u, p.ID, " LIKE ")
	require.NoError(t, err)
	assert.Equal(t, models.InteractionLike, res.MyReaction)

	var stored models.Interaction
	require.NoError(t, f.db.Take(&stored, "post_id = ?", p.ID).Error)
	assert.Equal(t, models.InteractionLike, stored.Type)

	_, err = f.svc.React(ctx, u, "missing", models.InteractionLike)
	assert.True(t, apierror.IsCode(err, apierror.ErrNotFound))
}

func TestReactNotifiesOwnerOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, fan := f.user(t, "rani"), f.user(t, "sapto")
	p := f.post(t, owner, "jadwal bentrok")

	_, err := f.svc.React(ctx, owner, p.ID, models.InteractionLike)
	require.NoError(t, err)
	assert.Empty(t, f.events.ofType(ws.EventNotification))

	_, err = f.svc.React(ctx, fan, p.ID, models.InteractionDislike)
	require.NoError(t, err)

	pushed := f.events.ofType(ws.EventNotification)
	require.Len(t, pushed, 1)
	assert.Equal(t, owner.ID, pushed[0].UserID)
	n := pushed[0].Event.Data.(models.Notification)
	assert.Equal(t, models.NotificationDislike, n.Type)
	assert.Equal(t, fan.ID, n.ActorID)
	assert.Contains(t, n.Message, "sapto disliked")
}

func TestRemoveReaction(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, fan := f.user(t, "tari"), f.user(t, "umar")
	p := f.post(t, owner, "ac panas")

	_, err := f.svc.RemoveReaction(ctx, fan, p.ID)
	assert.True(t, apierror.IsCode(err, apierror.ErrNotFound))

	_, err = f.svc.React(ctx, fan, p.ID, models.InteractionDislike)
	require.NoError(t, err)

	res, err := f.svc.RemoveReaction(ctx, fan, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DislikeCount)
	assert.Empty(t, res.MyReaction)

	// A like is allowed again after removal.
	res, err = f.svc.React(ctx, fan, p.ID, models.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LikeCount)
}

func TestCountersNeverGoNegative(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner, fan := f.user(t, "vina"), f.user(t, "wawan")
	p := f.post(t, owner, "x")

	_, err := f.svc.React(ctx, fan, p.ID, models.InteractionLike)
	require.NoError(t, err)
	// Simulate drift from an older writer.
	require.NoError(t, f.db.Model(&models.Post{}).Where("id = ?", p.ID).UpdateColumn("like_count", 0).Error)

	res, err := f.svc.React(ctx, fan, p.ID, models.InteractionDislike)
	require.NoError(t, err)
	assert.Equal(t, 0, res.LikeCount)
	assert.Equal(t, 1, res.DislikeCount)
}

func TestConcurrentLikesAreAllCounted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "yusuf")
	p := f.post(t, owner, "ramai")

	const n = 12
	fans := make([]*models.User, n)
	for i := range fans {
		fans[i] = f.user(t, fmt.Sprintf("fan%02d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range fans {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			_, err := f.svc.React(ctx, u, p.ID, models.InteractionLike)
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, n, f.reload(t, p.ID).LikeCount)
}
