package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "1.0.0"

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}

	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev == "" {
		return Version
	}

	return fmt.Sprintf("%s (%s%s)", Version, rev, dirty)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the tokihunter version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tokihunter version:", buildVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
