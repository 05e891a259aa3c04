package main

import (
	"fmt"
	"os"
	"path/filepath"

	"cogentcore.org/core/base/errors"
	"github.com/philipparndt/gopano/internal/imagecache"
	"github.com/philipparndt/gopano/internal/thumbs"
	"github.com/philipparndt/gopano/pkg/tour"
	"github.com/spf13/cobra"
)

var (
	thumbsOut       string
	thumbsSize      int
	thumbsOverwrite bool
	thumbsUpdate    bool
)

var thumbsCmd = &cobra.Command{
	Use:   "thumbs <tour>",
	Short: "Generate low resolution cube face thumbnails",
	Long: `Renders six WebP thumbnail faces for every panorama of a tour. The viewer
shows them while the full resolution images load.`,
	Args: cobra.ExactArgs(1),
	RunE: runThumbs,
}

func init() {
	f := thumbsCmd.Flags()
	f.StringVarP(&thumbsOut, "out", "o", "", "output directory, thumbs next to the tour by default")
	f.IntVar(&thumbsSize, "size", thumbs.DefaultSize, "face edge length in pixels")
	f.BoolVar(&thumbsOverwrite, "overwrite", false, "regenerate existing thumbnails")
	f.BoolVar(&thumbsUpdate, "update", false, "write the thumbnail paths into the tour file")
	rootCmd.AddCommand(thumbsCmd)
}

func runThumbs(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read tour file: %w", err)
	}
	ext := filepath.Ext(path)
	// paths stay as written so the file can be saved back unchanged
	t, err := tour.Decode(data, ext)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	out := thumbsOut
	if out == "" {
		out = filepath.Join(baseDir, "thumbs")
	}

	cache, err := imagecache.Open(cmd.Context(), imagecache.Options{Disabled: true})
	if err != nil {
		return err
	}
	defer func() { errors.Log(cache.Close()) }()

	n, err := thumbs.ForTour(cmd.Context(), cache, t, baseDir, out, thumbsSize, thumbsOverwrite)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated thumbnails for %d panorama(s) in %s\n", n, out)

	if !thumbsUpdate || n == 0 {
		return nil
	}
	encoded, err := tour.EncodeFor(t, ext)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write tour file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", path)
	return nil
}
