package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/ftl/flexsdr/client"
)

var metersCmd = &cobra.Command{
	Use:   "meters host",
	Short: "Subscribe to the radio's meters and print their values.",
	Run:   runWithClient(meters),
}

func init() {
	rootCmd.AddCommand(metersCmd)
}

func meters(ctx context.Context, c *client.Client, _ *cobra.Command, _ []string) {
	c.Meters.Added.Subscribe(func(m *client.Meter) {
		m.Value.Subscribe(func(value float64) {
			log.Printf("%s: %.2f %s", m.Name(), value, m.Unit())
		})
	})
	c.SendCommand("meter list")

	<-ctx.Done()
}
