package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the receptionist application
var rootCmd = &cobra.Command{
	Use:   "receptionist",
	Short: "Scheduling backend for a conversational dental-clinic receptionist",
	Long: `receptionist is the scheduling backend behind a voice/chat AI receptionist
for a dental clinic. It answers availability questions and books appointments
against the clinic's Google Calendar.

It can run as:
  - A webhook server for conversational AI platforms (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "receptionist version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
