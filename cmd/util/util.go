package util

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sharedbox/sharedbox/lib/dict"
	"github.com/sharedbox/sharedbox/lib/serializer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupSegmentFlags adds common segment flags to a command
func SetupSegmentFlags(cmd *cobra.Command) {
	key := "name"
	cmd.PersistentFlags().String(key, "default", WrapString("Name of the segment to operate on"))

	key = "size-mb"
	cmd.PersistentFlags().Int(key, 128, WrapString("Payload capacity of the segment in MiB (only used on creation)"))

	key = "max-keys"
	cmd.PersistentFlags().Int(key, 128, WrapString("Maximum number of distinct keys (only used on creation)"))

	key = "data-dir"
	cmd.PersistentFlags().String(key, ".", WrapString("Directory where segment snapshots are stored between invocations"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("sharedbox")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetDictOptions reads dictionary options from viper
func GetDictOptions() dict.Options {
	return dict.Options{
		Name:      viper.GetString("name"),
		SizeBytes: viper.GetInt("size-mb") << 20,
		MaxKeys:   viper.GetInt("max-keys"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.Serializer, error) {
	name := viper.GetString("serializer")
	ser, ok := serializer.ByName(name)
	if !ok {
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
	return ser, nil
}

// GetSnapshotPath returns the snapshot file for the configured segment
func GetSnapshotPath() string {
	return filepath.Join(viper.GetString("data-dir"), viper.GetString("name")+".seg")
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
