package dict

import (
	"os"

	"github.com/sharedbox/sharedbox/cmd/util"
	"github.com/sharedbox/sharedbox/lib/dict"
	"github.com/spf13/cobra"
)

var (
	cliDict *dict.Dict

	// DictCommands represents the dictionary command group
	DictCommands = &cobra.Command{
		Use:                "dict",
		Short:              "Perform dictionary operations on a segment",
		PersistentPreRunE:  setupDict,
		PersistentPostRunE: teardownDict,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common segment flags to the dict command
	util.SetupSegmentFlags(DictCommands)

	// Add subcommands
	DictCommands.AddCommand(setCmd)
	DictCommands.AddCommand(getCmd)
	DictCommands.AddCommand(delCmd)
	DictCommands.AddCommand(hasCmd)
	DictCommands.AddCommand(keysCmd)
	DictCommands.AddCommand(lenCmd)
	DictCommands.AddCommand(loadCmd)
	DictCommands.AddCommand(statsCmd)
	DictCommands.AddCommand(sizingCmd)
	DictCommands.AddCommand(unlinkCmd)
}

// setupDict opens the dictionary and restores its last snapshot. Each CLI
// invocation is a fresh process, so the segment starts empty and the
// snapshot file in the data dir carries state between invocations.
func setupDict(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get serializer
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	opts := util.GetDictOptions()
	opts.Serializer = s

	cliDict, err = dict.Open(opts)
	if err != nil {
		return err
	}

	// Restore previous state if a snapshot exists
	f, err := os.Open(util.GetSnapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	return cliDict.Restore(f)
}

// teardownDict snapshots the segment back to the data dir and closes the
// dictionary.
func teardownDict(_ *cobra.Command, _ []string) error {
	if cliDict == nil || cliDict.IsClosed() {
		return nil
	}

	f, err := os.Create(util.GetSnapshotPath())
	if err != nil {
		return err
	}
	defer f.Close()

	if err := cliDict.Snapshot(f); err != nil {
		return err
	}

	return cliDict.Close()
}
