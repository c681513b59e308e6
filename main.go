package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rm-hull/pixel-array-viewer/cmd"
	"github.com/spf13/cobra"
)

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func main() {
	var opts cmd.ViewOpts
	var pixelsPath, infoPath string

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	defaultPort, err := strconv.Atoi(envOr("VIEWER_PORT", "8080"))
	if err != nil {
		log.Fatalf("invalid VIEWER_PORT: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:  "pixel-array-viewer",
		Long: `Display flat pixel records (pixels.txt + info.txt) as an image`,
	}

	rootCmd.PersistentFlags().StringVar(&pixelsPath, "pixels", envOr("PIXELS_FILE", "pixels.txt"), "Path to the pixel record")
	rootCmd.PersistentFlags().StringVar(&infoPath, "info", envOr("INFO_FILE", "info.txt"), "Path to the metadata record (width,height,bpx)")

	viewCmd := &cobra.Command{
		Use:   "view [--pixels <path>] [--info <path>] [--surface browser|terminal] [--port <port>]",
		Short: "Reshape the pixel record and display it until dismissed",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			opts.PixelsPath = pixelsPath
			opts.InfoPath = infoPath
			return cmd.View(opts)
		},
	}

	viewCmd.Flags().StringVar(&opts.Surface, "surface", envOr("VIEWER_SURFACE", "browser"), "Where to display the image: browser or terminal")
	viewCmd.Flags().IntVar(&opts.Port, "port", defaultPort, "Port for the browser surface")
	viewCmd.Flags().IntVar(&opts.Scale, "scale", 0, "Integer upscale factor for the browser surface (0 = automatic)")
	viewCmd.Flags().Float64Var(&opts.Blur, "blur", 0, "Gaussian blur sigma (0 = off)")
	viewCmd.Flags().BoolVar(&opts.Greyscale, "greyscale", false, "Convert to greyscale before display")
	viewCmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload when either record file changes (browser surface only)")
	viewCmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	exportCmd := &cobra.Command{
		Use:   "export <image.png> [--pixels <path>] [--info <path>]",
		Short: "Write the pixel and metadata records for a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Export(args[0], pixelsPath, infoPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(c *cobra.Command, _ []string) {
			cmd.Version(c.OutOrStdout())
		},
	}

	rootCmd.AddCommand(viewCmd, exportCmd, versionCmd)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
