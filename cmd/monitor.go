package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/ftl/flexsdr/client"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor host",
	Short: "Connect to the given radio and log status and lifecycle events to stdout.",
	Run:   runWithClient(monitor),
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func monitor(ctx context.Context, c *client.Client, _ *cobra.Command, _ []string) {
	c.StateChanged.Subscribe(func(state client.SessionState) {
		log.Printf("session: %v", state)
	})
	c.LinkChanged.Subscribe(func(quality client.LinkQuality) {
		log.Printf("link: %v", quality)
	})
	c.Messages.Subscribe(func(msg client.BroadcastMessage) {
		log.Printf("message [%v]: %s", msg.Severity, msg.Text)
	})
	c.Slices.Added.Subscribe(func(s *client.Slice) {
		log.Printf("slice %s added: %.6f MHz %s", s.EntityID(), s.Frequency(), s.Mode())
		s.Updated.Subscribe(func(key string) {
			log.Printf("slice %s: %s changed", s.EntityID(), key)
		})
	})
	c.Slices.Removed.Subscribe(func(s *client.Slice) {
		log.Printf("slice %s removed", s.EntityID())
	})
	c.Panadapters.Added.Subscribe(func(p *client.Panadapter) {
		log.Printf("panadapter %s added", p.EntityID())
	})
	c.Panadapters.Removed.Subscribe(func(p *client.Panadapter) {
		log.Printf("panadapter %s removed", p.EntityID())
	})
	c.GUIClients.Added.Subscribe(func(g *client.GUIClient) {
		log.Printf("client %s connected: %s@%s", g.EntityID(), g.Program(), g.Station())
	})
	c.GUIClients.Removed.Subscribe(func(g *client.GUIClient) {
		log.Printf("client %s disconnected", g.EntityID())
	})
	c.Spots.Added.Subscribe(func(s *client.Spot) {
		log.Printf("spot %s added: %s on %.6f MHz", s.EntityID(), s.Callsign(), s.Frequency())
	})

	<-ctx.Done()
}
