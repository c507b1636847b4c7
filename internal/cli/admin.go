package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/auth"
	"github.com/sujalbistaa/suara/internal/db"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/seed"
	"github.com/sujalbistaa/suara/internal/service"
)

// withService opens the configured database, migrates it and runs fn with
// a service that has no live event stream.
func (a *app) withService(ctx context.Context, fn func(ctx context.Context, svc *service.Service) error) error {
	url := a.settings.DatabaseURL()
	a.log.Debug("Opening database", "url", url)

	database, err := db.Init(url)
	if err != nil {
		return err
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		return err
	}
	return fn(ctx, newOperatorService(database))
}

// newOperatorService signs with a throwaway secret. Tokens issued while
// seeding are never handed out.
func newOperatorService(database *gorm.DB) *service.Service {
	tokens := auth.NewTokenManager([]byte(uuid.NewString()), time.Hour)
	return service.New(database, tokens, service.Options{})
}

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands that work on the database directly",
		Long:  "Operator commands. These open database.url from the config (or SUARA_DATABASE_URL)\ninstead of going through the API.",
	}

	roles := map[string]string{"promote": models.RoleAdmin, "demote": models.RoleUser}
	for _, name := range []string{"promote", "demote"} {
		role := roles[name]
		cmd.AddCommand(&cobra.Command{
			Use:   name + " <email>",
			Short: "Set a user's role to " + role,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withService(commandContext(cmd), func(ctx context.Context, svc *service.Service) error {
					user, err := svc.SetRoleByEmail(ctx, args[0], role)
					if err != nil {
						return err
					}
					return a.out.Object(user, func(w io.Writer) {
						a.out.Success("%s <%s> is now %s", user.Username, user.Email, user.Role)
					})
				})
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show platform statistics through the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			s, err := c.AdminStats(commandContext(cmd))
			if err != nil {
				return err
			}
			return a.out.Object(s, func(w io.Writer) {
				a.out.Table([]string{"USERS", "ADMINS", "POSTS", "COMMENTS", "LIKES", "DISLIKES", "LAST 7 DAYS"},
					[][]string{{
						fmt.Sprint(s.Users), fmt.Sprint(s.Admins), fmt.Sprint(s.Posts), fmt.Sprint(s.Comments),
						fmt.Sprint(s.Likes), fmt.Sprint(s.Dislikes), fmt.Sprint(s.PostsLastWeek),
					}})
			})
		},
	})
	return cmd
}

func (a *app) seedCmd() *cobra.Command {
	opts := seed.Options{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake students, posts and reactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Users < 1 {
				return fmt.Errorf("--users must be at least 1")
			}
			return a.withService(commandContext(cmd), func(ctx context.Context, svc *service.Service) error {
				sum, err := seed.New(svc).Run(ctx, opts)
				if err != nil {
					return err
				}
				return a.out.Object(sum, func(w io.Writer) {
					a.out.Success("Seeded %d users, %d posts, %d reactions, %d comments",
						sum.Users, sum.Posts, sum.Reactions, sum.Comments)
					mutedFmt.Fprintf(w, "Every seeded account uses the password %q\n", seed.Password)
				})
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Users, "users", 10, "Number of accounts")
	f.IntVar(&opts.PostsPerUser, "posts", 3, "Posts per account")
	f.IntVar(&opts.CommentsPerPost, "comments", 2, "Comments per post")
	return cmd
}
