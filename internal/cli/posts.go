package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sujalbistaa/suara/pkg/client"
)

func (a *app) postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "posts",
		Aliases: []string{"post"},
		Short:   "Browse and manage posts",
	}
	cmd.AddCommand(a.postsListCmd(), a.postsShowCmd(), a.postsCreateCmd(), a.postsDeleteCmd())
	return cmd
}

func (a *app) postsListCmd() *cobra.Command {
	var opts client.ListOptions
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mine {
				if a.settings.UserID() == "" {
					return fmt.Errorf("--mine needs a stored login")
				}
				opts.UserID = a.settings.UserID()
			}

			page, err := a.client().ListPosts(commandContext(cmd), opts)
			if err != nil {
				return err
			}
			return a.out.Object(page, func(w io.Writer) {
				if len(page.Posts) == 0 {
					mutedFmt.Fprintln(w, "No posts yet")
					return
				}
				rows := make([][]string, 0, len(page.Posts))
				for _, p := range page.Posts {
					rows = append(rows, []string{
						p.ID,
						p.Username,
						truncate(postTitle(p), 40),
						strconv.Itoa(p.LikeCount),
						strconv.Itoa(p.DislikeCount),
						p.MyReaction,
						p.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				a.out.Table([]string{"ID", "AUTHOR", "POST", "LIKES", "DISLIKES", "MINE", "CREATED"}, rows)
				mutedFmt.Fprintf(w, "%d-%d of %d\n", page.Page.Offset+1, page.Page.Offset+len(page.Posts), page.Total)
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Limit, "limit", 20, "Page size (max 100)")
	f.IntVar(&opts.Offset, "offset", 0, "Number of posts to skip")
	f.StringVar(&opts.UserID, "user", "", "Only posts by this user ID")
	f.BoolVar(&mine, "mine", false, "Only my posts")
	return cmd
}

func (a *app) postsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c := a.client()

			post, err := c.GetPost(ctx, args[0])
			if err != nil {
				return err
			}
			comments, err := c.ListComments(ctx, post.ID)
			if err != nil {
				return err
			}

			view := struct {
				Post     *client.Post     `json:"post"`
				Comments []client.Comment `json:"comments"`
			}{post, comments}
			return a.out.Object(view, func(w io.Writer) {
				if post.Judul != "" {
					bold.Fprintln(w, post.Judul)
				}
				fmt.Fprintln(w, post.Deskripsi)
				if post.ImageURL != "" {
					fmt.Fprintf(w, "[image] %s\n", post.ImageURL)
				}
				mutedFmt.Fprintf(w, "by %s at %s  +%d -%d\n", post.Username,
					post.CreatedAt.Local().Format("2006-01-02 15:04"), post.LikeCount, post.DislikeCount)
				printComments(w, comments)
			})
		},
	}
}

func (a *app) postsCreateCmd() *cobra.Command {
	var in client.PostInput
	var image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			if image != "" {
				data, err := os.ReadFile(image)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				up, err := c.UploadImage(ctx, data, image)
				if err != nil {
					return err
				}
				a.log.Debug("Uploaded image", "key", up.Key, "size", up.Size)
				in.ImageURL = up.URL
			}

			post, err := c.CreatePost(ctx, in)
			if err != nil {
				return err
			}
			return a.out.Object(post, func(w io.Writer) {
				a.out.Success("Posted %s", post.ID)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in.Judul, "title", "t", "", "Optional title")
	f.StringVarP(&in.Deskripsi, "body", "b", "", "Post text")
	f.StringVar(&in.ImageURL, "image-url", "", "URL of an already hosted image")
	f.StringVar(&image, "image", "", "Path of an image file to upload")
	_ = cmd.MarkFlagRequired("body")
	cmd.MarkFlagsMutuallyExclusive("image", "image-url")
	return cmd
}

func (a *app) postsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post with its comments and reactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if err := c.DeletePost(commandContext(cmd), args[0]); err != nil {
				return err
			}
			a.out.Success("Deleted post %s", args[0])
			return nil
		},
	}
}

func (a *app) reactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "react",
		Short: "Like, dislike or clear your reaction on a post",
	}

	for _, kind := range []string{"like", "dislike"} {
		cmd.AddCommand(&cobra.Command{
			Use:   kind + " <post-id>",
			Short: "Mark a post with a " + kind,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.authedClient()
				if err != nil {
					return err
				}
				r, err := c.React(commandContext(cmd), args[0], kind)
				if err != nil {
					return err
				}
				return a.printReaction(r)
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <post-id>",
		Short: "Clear your reaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			r, err := c.RemoveReaction(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return a.printReaction(r)
		},
	})
	return cmd
}

func (a *app) printReaction(r *client.Reaction) error {
	return a.out.Object(r, func(w io.Writer) {
		mine := r.MyReaction
		if mine == "" {
			mine = "none"
		}
		a.out.Success("%s: %d likes, %d dislikes (yours: %s)", r.PostID, r.LikeCount, r.DislikeCount, mine)
	})
}

func postTitle(p client.Post) string {
	if p.Judul != "" {
		return p.Judul
	}
	return p.Deskripsi
}
