package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gopano/internal/session"
	"github.com/philipparndt/gopano/pkg/tour"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <tour>",
	Short: "Check a tour and the local images it references",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	t, err := session.Load(args[0])
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	panoramas, hotpoints := 0, 0
	for _, vp := range t.Viewpoints {
		panoramas += len(vp.Panoramas)
		hotpoints += len(vp.Hotpoints)
	}
	fmt.Fprintln(out, "Tour Information")
	fmt.Fprintln(out, "================")
	if t.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", t.Name)
	}
	fmt.Fprintf(out, "  Viewpoints: %d\n", len(t.Viewpoints))
	fmt.Fprintf(out, "  Panoramas: %d\n", panoramas)
	fmt.Fprintf(out, "  Hotpoints: %d\n", hotpoints)

	var missing []string
	images := t.Images()
	for _, img := range images {
		if tour.IsRemote(img) {
			continue
		}
		if _, err := os.Stat(img); err != nil {
			missing = append(missing, img)
		}
	}
	fmt.Fprintf(out, "  Images: %d\n", len(images))
	if len(missing) > 0 {
		fmt.Fprintln(out, "\nMissing images:")
		for _, m := range missing {
			fmt.Fprintf(out, "  - %s\n", m)
		}
		return fmt.Errorf("%d image(s) missing", len(missing))
	}
	fmt.Fprintln(out, "\nTour is valid")
	return nil
}
