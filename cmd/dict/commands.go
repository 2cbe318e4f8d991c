package dict

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/sharedbox/sharedbox/cmd/util"
	"github.com/sharedbox/sharedbox/lib/codec"
	"github.com/spf13/cobra"
)

// parseValue interprets a CLI argument as JSON where possible, falling back
// to the raw string. This lets `set counter 42` store a number and
// `set name alice` store a string without extra quoting.
func parseValue(arg string) any {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err == nil {
		return v
	}
	return arg
}

// printValue renders a decoded value for the terminal
func printValue(v codec.Value) {
	if tensor, ok := v.Tensor(); ok {
		fmt.Println(tensor.String())
		return
	}
	out, err := json.Marshal(v.Any())
	if err != nil {
		fmt.Printf("%v\n", v.Any())
		return
	}
	fmt.Println(string(out))
}

// printJSON renders diagnostics as indented JSON
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := cliDict.Set(key, parseValue(args[1])); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := cliDict.Get(args[0])
			if err != nil {
				return err
			}
			printValue(value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cliDict.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			fmt.Printf("key=%s, found=%t\n", key, cliDict.Contains(key))
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys in the segment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range cliDict.Keys() {
				fmt.Println(key)
			}
			return nil
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len",
		Short: "Prints the number of entries in the segment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(cliDict.Len())
			return nil
		},
	}
	loadCmd = &cobra.Command{
		Use:   "load [file]",
		Short: "Bulk-loads entries from a JSON object file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var data map[string]any
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("file must contain a JSON object: %w", err)
			}

			n, err := cliDict.BulkLoad(data)
			if err != nil {
				return err
			}
			fmt.Printf("loaded %d entries\n", n)
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints sampled segment statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cliDict.Stats())
		},
	}
	sizingCmd = &cobra.Command{
		Use:   "sizing [targetEntries]",
		Short: "Prints a capacity recommendation for a target entry count",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := 0
			if len(args) == 1 {
				var err error
				target, err = strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("targetEntries must be a number: %w", err)
				}
			}
			return printJSON(cliDict.RecommendSizing(target))
		},
	}
	unlinkCmd = &cobra.Command{
		Use:   "unlink",
		Short: "Destroys the segment and removes its snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cliDict.Close(); err != nil {
				return err
			}
			if err := cliDict.Unlink(); err != nil {
				return err
			}
			if err := os.Remove(util.GetSnapshotPath()); err != nil && !os.IsNotExist(err) {
				return err
			}
			fmt.Println("unlinked successfully")
			return nil
		},
	}
)
