// Command iiko-bot runs the Telegram bot for iiko cash shift and sales
// reports, and prints the same reports from the command line.
package main

import (
	"os"

	"github.com/KirillkoTankisto/iiko-bot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
