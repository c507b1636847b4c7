package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sujalbistaa/suara/pkg/client"
)

func (a *app) notificationsCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Show your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			page, err := c.Notifications(commandContext(cmd), opts)
			if err != nil {
				return err
			}
			return a.out.Object(page, func(w io.Writer) {
				bold.Fprintf(w, "%d unread\n", page.Unread)
				for _, n := range page.Notifications {
					marker := " "
					if !n.IsRead {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %s  %s\n", marker, n.CreatedAt.Local().Format("01-02 15:04"), n.Message)
					mutedFmt.Fprintf(w, "    %s\n", n.ID)
				}
			})
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Page size (max 100)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of notifications to skip")

	cmd.AddCommand(&cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark one notification, or all of them, as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				if err := c.MarkAllNotificationsRead(commandContext(cmd)); err != nil {
					return err
				}
				a.out.Success("All notifications marked read")
				return nil
			}
			if err := c.MarkNotificationRead(commandContext(cmd), args[0]); err != nil {
				return err
			}
			a.out.Success("Marked %s read", args[0])
			return nil
		},
	})
	return cmd
}
