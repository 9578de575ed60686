package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Fill the image slots of the template",
}

var imageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List image slots and whether an image was uploaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			for _, s := range w.engine.SlotImages() {
				state := "placeholder"
				if s.Resolved {
					state = "uploaded"
					if s.Original != "" {
						state += " (" + s.Original + ")"
					}
				}
				fmt.Printf("%-20s %-16s %4dx%-4d %s\n", s.Key, s.Label, s.Width, s.Height, state)
			}
			return nil
		})
	},
}

var imageSetCmd = &cobra.Command{
	Use:   "set <slot> <file>",
	Short: "Crop and scale an image into a slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			path, err := w.engine.SaveSlotImage(args[0], filepath.Base(args[1]), data)
			if err != nil {
				return err
			}
			logf("Saved %s", path)
			return nil
		})
	},
}

var imageClearCmd = &cobra.Command{
	Use:   "clear <slot>",
	Short: "Restore the placeholder of a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.ClearSlotImage(args[0])
		})
	},
}

func init() {
	imageCmd.AddCommand(imageListCmd, imageSetCmd, imageClearCmd)
	rootCmd.AddCommand(imageCmd)
}
