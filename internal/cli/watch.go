package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sujalbistaa/suara/pkg/client"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live events until interrupted",
		Long:  "Stream live events. Logged-in users also receive their notifications.\nEvents sent while disconnected are not replayed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := a.client().Subscribe(ctx)
			if err != nil {
				return err
			}
			a.log.Info("Watching events", "api", a.settings.BaseURL())

			for ev := range events {
				if a.out.JSON() {
					b, err := json.Marshal(ev)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(b))
					continue
				}
				a.printEvent(cmd, ev)
			}
			return nil
		},
	}
}

func (a *app) printEvent(cmd *cobra.Command, ev client.Event) {
	w := cmd.OutOrStdout()
	switch ev.Type {
	case client.EventNotification:
		var n client.Notification
		if err := ev.Decode(&n); err == nil {
			successFmt.Fprintf(w, "[notification] %s\n", n.Message)
			return
		}
	case client.EventReactionUpdated:
		var r client.Reaction
		if err := ev.Decode(&r); err == nil {
			fmt.Fprintf(w, "[%s] %s +%d -%d\n", ev.Type, r.PostID, r.LikeCount, r.DislikeCount)
			return
		}
	}
	fmt.Fprintf(w, "[%s] %s\n", ev.Type, string(ev.Data))
}
