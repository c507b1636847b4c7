// Package seed fills a database with fake students, posts and reactions
// for local development.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/logger"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/service"
)

// Password is shared by every seeded account.
const Password = "password123"

var majors = []string{"Informatika", "Sistem Informasi", "Teknik Sipil", "Manajemen", "Akuntansi", "Hukum"}

type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
}

type Summary struct {
	Users     int
	Posts     int
	Reactions int
	Comments  int
}

type Seeder struct {
	svc *service.Service
}

func New(svc *service.Service) *Seeder {
	return &Seeder{svc: svc}
}

// Run creates opts.Users accounts, their posts, random reactions and
// comments, all through the regular service rules.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	sum := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for len(users) < opts.Users {
		sess, err := s.svc.Register(ctx, service.RegisterInput{
			Email:    strings.ToLower(gofakeit.Email()),
			Username: username(),
			Password: Password,
			NIM:      gofakeit.Numerify("2021######"),
			Gender:   gofakeit.Gender(),
			Jurusan:  majors[gofakeit.Number(0, len(majors)-1)],
		})
		if apierror.IsCode(err, apierror.ErrConflict) {
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, sess.User)
	}
	sum.Users = len(users)

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			p, err := s.svc.CreatePost(ctx, u, service.CreatePostInput{
				Judul:     title(),
				Deskripsi: gofakeit.HipsterSentence() + " " + gofakeit.HipsterSentence(),
			})
			if err != nil {
				return sum, fmt.Errorf("seed post: %w", err)
			}
			posts = append(posts, p)
		}
	}
	sum.Posts = len(posts)

	for _, p := range posts {
		for _, u := range users {
			if u.ID == p.UserID || !gofakeit.Bool() {
				continue
			}
			kind := models.InteractionLike
			if gofakeit.Number(1, 4) == 1 {
				kind = models.InteractionDislike
			}
			if _, err := s.svc.React(ctx, u, p.ID, kind); err != nil {
				return sum, fmt.Errorf("seed reaction: %w", err)
			}
			sum.Reactions++
		}
		for i := 0; i < opts.CommentsPerPost && len(users) > 0; i++ {
			author := users[gofakeit.Number(0, len(users)-1)]
			if _, err := s.svc.CreateComment(ctx, author, p.ID, service.CreateCommentInput{
				Content: gofakeit.HipsterSentence(),
			}); err != nil {
				return sum, fmt.Errorf("seed comment: %w", err)
			}
			sum.Comments++
		}
	}

	logger.Log.Info("Seed complete",
		zap.Int("users", sum.Users),
		zap.Int("posts", sum.Posts),
		zap.Int("reactions", sum.Reactions),
		zap.Int("comments", sum.Comments),
	)
	return sum, nil
}

// username keeps fake names inside the 3..50 character rule.
func username() string {
	name := gofakeit.Username()
	if len(name) < 3 {
		name += gofakeit.Numerify("###")
	}
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}

func title() string {
	t := []rune(strings.TrimSuffix(gofakeit.HipsterSentence(), "."))
	if len(t) > 200 {
		t = t[:200]
	}
	return string(t)
}
