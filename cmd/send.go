package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ftl/flexsdr/client"
)

var sendCmd = &cobra.Command{
	Use:   "send host <command>",
	Short: "Send the given raw command to the radio and print the reply.",
	Run:   runWithClient(send),
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func send(_ context.Context, c *client.Client, _ *cobra.Command, args []string) {
	if len(args) < 2 {
		log.Fatal("no command to send, use flexsdr send <host> <command>")
	}

	code, message, err := c.SendCommandAwait(strings.Join(args[1:], " "), 0)
	if err != nil {
		log.Fatalf("cannot send command: %v", err)
	}
	fmt.Printf("%08X|%s\n", code, message)
}
