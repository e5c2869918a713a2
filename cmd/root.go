package cmd

import (
	"fmt"
	"os"

	"github.com/hrishi045/segstore/cmd/kv"
	"github.com/hrishi045/segstore/cmd/serve"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "segstore",
		Short: "segmented key-value storage server",
		Long: fmt.Sprintf(`segstore (v%s)

A hierarchical key-value store exposed over HTTP. Blobs are addressed
by an ordered sequence of up to four string segments and persisted in
SQLite, backing incremental state for a collaborative document-sync
service.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of segstore",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("segstore v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
