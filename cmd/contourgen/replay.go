package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/silhouette"
)

// replayOptions place the contour's node in front of a camera.
type replayOptions struct {
	width, height float64
	distance      float64
	ratio         float64
	maxFrames     int
}

// replaySession runs script against a single-node scene carrying cf.
func replaySession(cf contourFile, script []byte, o replayOptions) ([]silhouette.TapResult, error) {
	runner, err := silhouette.LoadReplayScript(script)
	if err != nil {
		return nil, err
	}

	scene := silhouette.NewScene()
	cam := silhouette.NewPerspectiveCamera(silhouette.Rect{Width: o.width, Height: o.height})
	scene.SetCamera(cam)

	cfg := silhouette.DefaultEngineConfig()
	cfg.ImageWidth = cf.Width
	cfg.ImageHeight = cf.Height
	cfg.AspectRatio = o.ratio
	engine := silhouette.NewEngine(scene, scene, cfg)

	node := scene.AddNode(0, silhouette.NewTransform(silhouette.Vec3{Z: -o.distance}))
	if err := engine.PersistContour(node, cf.Points); err != nil {
		return nil, err
	}
	h := engine.CreateHitbox(node, cf.Image)
	if h == nil {
		return nil, fmt.Errorf("replay: no hitbox for %s", cf.Image)
	}
	engine.SetHitboxes([]*silhouette.Hitbox{h})

	results := runner.Run(engine, cam, o.maxFrames)
	if !runner.Done() {
		return results, fmt.Errorf("replay: script unfinished after %d frames", o.maxFrames)
	}
	return results, nil
}

func buildReplayCommand() *cobra.Command {
	var opts replayOptions
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "replay <contour.json> <script.json>",
		Short: "Replay a scripted camera session against a contour",
		Long: `Places the contour on a quad in front of a camera at the origin, then
plays the script one step per frame. Script actions: move, turn, tap, wait.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := readContourFile(args[0])
			if err != nil {
				return err
			}
			script, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			results, err := replaySession(cf, script, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return fmt.Errorf("encode results: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			for _, r := range results {
				verdict := "miss"
				if r.Hit {
					verdict = "hit " + r.Image
				}
				fmt.Fprintf(out, "frame %d tap %q (%.0f,%.0f): %s\n", r.Frame, r.Label, r.X, r.Y, verdict)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.width, "width", 800, "Viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", 600, "Viewport height in pixels")
	cmd.Flags().Float64Var(&opts.distance, "distance", 1.5, "Distance from the camera to the contour quad")
	cmd.Flags().Float64Var(&opts.ratio, "ratio", silhouette.A4Ratio, "Width-to-height ratio of the contour quad")
	cmd.Flags().IntVar(&opts.maxFrames, "max-frames", 10000, "Frame limit for the script")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output tap results as JSON")
	return cmd
}
