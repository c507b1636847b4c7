package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sujalbistaa/suara/pkg/client"
)

func (a *app) commentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Read and write comments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <post-id>",
		Short: "List a post's comments, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := a.client().ListComments(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return a.out.Object(comments, func(w io.Writer) {
				printComments(w, comments)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <post-id> <text>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			comment, err := c.AddComment(commandContext(cmd), args[0], args[1])
			if err != nil {
				return err
			}
			return a.out.Object(comment, func(w io.Writer) {
				a.out.Success("Commented %s", comment.ID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if err := c.DeleteComment(commandContext(cmd), args[0]); err != nil {
				return err
			}
			a.out.Success("Deleted comment %s", args[0])
			return nil
		},
	})
	return cmd
}

func printComments(w io.Writer, comments []client.Comment) {
	if len(comments) == 0 {
		mutedFmt.Fprintln(w, "No comments")
		return
	}
	for _, c := range comments {
		bold.Fprintf(w, "%s", c.Username)
		mutedFmt.Fprintf(w, "  %s  %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.ID)
		fmt.Fprintf(w, "  %s\n", c.Content)
	}
}
