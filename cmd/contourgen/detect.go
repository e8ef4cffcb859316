package main

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/webp"

	"github.com/phanxgames/silhouette"
)

// contourFile is the on-disk form of a detected contour. Points are in the
// pixel space of Width x Height.
type contourFile struct {
	Image  string            `json:"image"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Source string            `json:"source"`
	Points []silhouette.Vec2 `json:"points"`
}

// detectOptions are the detection flags shared by detect and watch.
type detectOptions struct {
	size      int
	threshold int
	step      int
	tolerance float64
	rays      int
	overlay   string
}

func defaultDetectOptions() detectOptions {
	def := silhouette.DefaultContourConfig()
	return detectOptions{
		size:      512,
		threshold: int(def.AlphaThreshold),
		step:      def.Step,
		tolerance: def.SimplifyTolerance,
		rays:      def.NumRays,
	}
}

func (o *detectOptions) register(cmd *cobra.Command) {
	def := defaultDetectOptions()
	cmd.Flags().IntVar(&o.size, "size", def.size, "Working size images are resampled to (0 keeps the source size)")
	cmd.Flags().IntVar(&o.threshold, "threshold", def.threshold, "Alpha above which a pixel is opaque (0-254)")
	cmd.Flags().IntVar(&o.step, "step", def.step, "Sampling stride in pixels")
	cmd.Flags().Float64Var(&o.tolerance, "tolerance", def.tolerance, "Simplification tolerance in pixels")
	cmd.Flags().IntVar(&o.rays, "rays", def.rays, "Number of rays cast from the seed")
	cmd.Flags().StringVar(&o.overlay, "overlay", "", "Write a PNG overlay of each contour into this directory")
}

func (o *detectOptions) contourConfig() (silhouette.ContourConfig, error) {
	if o.threshold < 0 || o.threshold > 254 {
		return silhouette.ContourConfig{}, fmt.Errorf("--threshold must be in [0, 254], got %d", o.threshold)
	}
	if o.step < 1 {
		return silhouette.ContourConfig{}, fmt.Errorf("--step must be at least 1, got %d", o.step)
	}
	cfg := silhouette.DefaultContourConfig()
	cfg.AlphaThreshold = uint8(o.threshold)
	cfg.Step = o.step
	cfg.SimplifyTolerance = o.tolerance
	cfg.NumRays = o.rays
	return cfg, nil
}

// detectFile loads an image, detects its contour and writes the optional
// overlay.
func (o *detectOptions) detectFile(path string, cfg silhouette.ContourConfig) (contourFile, error) {
	img, err := loadImage(path)
	if err != nil {
		return contourFile{}, err
	}
	var r *silhouette.Raster
	if o.size > 0 {
		r = silhouette.RasterFromImageScaled(img, o.size, o.size)
	} else {
		r = silhouette.RasterFromImage(img)
	}

	points, src := silhouette.DetectContour(r, cfg)
	silhouette.Logger().Debug("contour detected",
		"image", path, "points", len(points), "source", src.String())

	if o.overlay != "" {
		out, err := silhouette.WriteContourOverlay(o.overlay, baseName(path), r, points)
		if err != nil {
			return contourFile{}, err
		}
		silhouette.Logger().Info("overlay written", "path", out)
	}

	return contourFile{
		Image:  filepath.Base(path),
		Width:  r.Width,
		Height: r.Height,
		Source: src.String(),
		Points: points,
	}, nil
}

func buildDetectCommand() *cobra.Command {
	var opts detectOptions
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "detect <image>...",
		Short: "Detect the contour of one or more images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.contourConfig()
			if err != nil {
				return err
			}
			results := make([]contourFile, 0, len(args))
			for _, path := range args {
				cf, err := opts.detectFile(path, cfg)
				if err != nil {
					return err
				}
				results = append(results, cf)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				var data []byte
				if len(results) == 1 {
					data, err = json.MarshalIndent(results[0], "", "  ")
				} else {
					data, err = json.MarshalIndent(results, "", "  ")
				}
				if err != nil {
					return fmt.Errorf("encode contours: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			for _, cf := range results {
				fmt.Fprintf(out, "%s: %d points (%s)\n", cf.Image, len(cf.Points), cf.Source)
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output contour files as JSON")
	return cmd
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// readContourFile loads a contour file written by detect or watch.
func readContourFile(path string) (contourFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contourFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	var cf contourFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return contourFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cf.Points) == 0 {
		return contourFile{}, fmt.Errorf("parse %s: no points", path)
	}
	return cf, nil
}

// writeContourFile writes cf as indented JSON through a temp file and rename.
func writeContourFile(path string, cf contourFile) error {
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// baseName strips the directory and extension from path.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// isSourceImage reports whether path has an image extension contourgen reads.
func isSourceImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".webp":
		return true
	}
	return false
}

// contourPath returns the contour file path written next to an image.
func contourPath(imagePath string) string {
	return filepath.Join(filepath.Dir(imagePath), baseName(imagePath)+".contour.json")
}
