package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ftl/flexsdr/client"
)

var infoCmd = &cobra.Command{
	Use:   "info host",
	Short: "Print information about the radio.",
	Run:   runWithClient(info),
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func info(ctx context.Context, c *client.Client, _ *cobra.Command, _ []string) {
	// The radio info arrives as status lines right after the handshake.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return
	}

	slices, panadapters := c.Radio.Resources()
	fmt.Printf("model:     %s\n", c.Radio.Model())
	fmt.Printf("name:      %s\n", c.Radio.Name())
	fmt.Printf("callsign:  %s\n", c.Radio.Callsign())
	fmt.Printf("serial:    %s\n", c.Radio.Serial())
	fmt.Printf("firmware:  %s\n", c.Radio.SoftwareVersion())
	fmt.Printf("protocol:  %s\n", c.ProtocolVersion())
	fmt.Printf("handle:    0x%08X\n", c.Handle())
	fmt.Printf("public ip: %s\n", c.PublicIP())
	fmt.Printf("capacity:  %d slices, %d panadapters\n", slices, panadapters)
	fmt.Printf("link:      %v\n", c.LinkQuality())
}
