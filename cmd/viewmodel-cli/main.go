package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-viewmodel/internal/telemetry"
)

var version = "dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("viewmodel-cli: ")

	ctx := context.Background()

	telemetryCfg, err := telemetry.LoadConfig()
	if err != nil {
		log.Fatalf("load telemetry config: %v", err)
	}
	shutdown, err := telemetry.Setup(ctx, telemetryCfg)
	if err != nil {
		log.Fatalf("setup telemetry: %v", err)
	}

	err = newRootCmd().ExecuteContext(ctx)
	if shutdownErr := shutdown(ctx); shutdownErr != nil {
		log.Printf("flush traces: %v", shutdownErr)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "viewmodel-cli",
		Short: "Render view-model page definitions through pongo2 templates",
		Long: `viewmodel-cli renders a page definition (JSON or YAML) into HTML.

The page names a content template and a layout; the content is rendered
first and handed to the layout as "body". Event hooks declared in the page
or in an events file run before and after rendering.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	rootCmd.AddCommand(
		renderCmd(newSurveyDriver()),
		messageCmd(),
		templatesCmd(),
	)
	return rootCmd
}
