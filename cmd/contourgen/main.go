// Command contourgen extracts contour polygons from sprite images, keeps them
// up to date while a directory changes, and replays scripted camera sessions
// against the generated contours.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/silhouette"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns a process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := buildRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func buildRootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "contourgen",
		Short: "Extract and test contour hitboxes for sprite images",
		Long: `contourgen - contour hitboxes for semi-transparent sprites

  contourgen detect page.png             Print the contour of an image
  contourgen detect --json *.png         Emit contour files as JSON
  contourgen watch ./sprites             Regenerate contours on change
  contourgen replay page.json run.json   Replay a scripted camera session`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			silhouette.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(buildDetectCommand())
	root.AddCommand(buildWatchCommand())
	root.AddCommand(buildReplayCommand())
	return root
}
