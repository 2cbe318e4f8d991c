package cmd

import (
	"fmt"
	"os"

	"github.com/sharedbox/sharedbox/cmd/dict"
	"github.com/sharedbox/sharedbox/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "sharedbox",
		Short: "shared dictionary segments",
		Long: fmt.Sprintf(`sharedbox (v%s)

A shared dictionary library written in Go: a string-keyed mapping over
named segments with native tensor serialization for numeric array values.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sharedbox",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sharedbox v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(dict.DictCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "gob", util.WrapString("serializer to use for opaque values (gob, json)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
