package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/imaging"
	"github.com/ziadkadry99/proposal-engine/internal/session"
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>...",
	Short: "Turn scanned document pages into editable proposal pages",
	Long: `Sends each image to the configured vision model, which reads its title,
paragraphs, lists and tables. Every image becomes a new page with an
editable text block; tables become numbered tables.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	images := make([]session.SourceImage, 0, len(args))
	for _, a := range args {
		if !imaging.IsImageFile(a) {
			return fmt.Errorf("%s is not an image file", a)
		}
		data, err := os.ReadFile(a)
		if err != nil {
			return fmt.Errorf("reading %s: %w", a, err)
		}
		images = append(images, session.SourceImage{Name: filepath.Base(a), MIME: imaging.MimeType(a), Data: data})
	}

	return withWorkspace(cmd, func(w *localWorkspace) error {
		x, err := newExtractor(w.cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Extracting %d page(s) with %s/%s\n", len(images), w.cfg.Vision.Provider, w.cfg.Vision.Model)

		res, err := w.engine.ExtractPages(cmd.Context(), x, images)
		if res != nil {
			for _, f := range res.Failed {
				fmt.Fprintf(os.Stderr, "Failed: %s\n", f)
			}
			fmt.Fprintf(os.Stderr, "Added %d page(s)\n", res.Added)
		}
		usage := x.Usage()
		logf("Tokens: %d in, %d out (~$%.4f)", usage.InputTokens, usage.OutputTokens, usage.Cost)
		return err
	})
}
