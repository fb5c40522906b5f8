package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clubpoint",
	Short: "Clubpoint is the booking backend for the club-management system",
	Long: `Booking backend for the gaming-club management system: authenticates
members against the external club API, manages their sessions and proxies
booking, host, payment and leaderboard queries.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
