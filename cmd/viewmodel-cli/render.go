package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	viewmodel "github.com/goliatone/go-viewmodel"
	"github.com/goliatone/go-viewmodel/pkg/events"
	"github.com/goliatone/go-viewmodel/pkg/page"
	"github.com/goliatone/go-viewmodel/pkg/template/pongo"
)

type renderOptions struct {
	Config

	PagePath string
	Layout   string
	Output   string
	Set      []string
	Prompt   []string
	Metrics  bool
}

func renderCmd(driver promptDriver) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <page-file>",
		Short: "Render a page definition",
		Long: `Render a page definition (JSON or YAML) through pongo2 templates.

Templates are looked up under --templates; names the directory does not
provide fall back to the built-in layouts (layouts.default, layouts.bare).`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyEnvDefaults(cmd, &opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PagePath = args[0]
			return runRender(cmd.Context(), opts, driver, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Templates, "templates", "t", "", "template directory (env VIEWMODEL_TEMPLATES)")
	flags.StringVar(&opts.Extension, "extension", "", "template file extension (env VIEWMODEL_EXTENSION)")
	flags.StringVar(&opts.TemplatePath, "template-path", "", "template path used when the page declares none (env VIEWMODEL_TEMPLATE_PATH)")
	flags.BoolVar(&opts.Sanitize, "sanitize", false, "treat string data as user markup: sanitize it and print it unescaped (env VIEWMODEL_SANITIZE)")
	flags.StringVarP(&opts.Layout, "layout", "l", "", "override the page layout")
	flags.StringVarP(&opts.Output, "output", "o", "", "output file (stdout if empty)")
	flags.StringArrayVar(&opts.Set, "set", nil, "data override as key=value (repeatable)")
	flags.StringArrayVar(&opts.Prompt, "prompt", nil, "data key to ask for when the page lacks it (repeatable)")
	flags.BoolVar(&opts.Metrics, "metrics", false, "print render metrics to stderr")

	return cmd
}

// applyEnvDefaults fills options the user did not pass as flags from the
// environment.
func applyEnvDefaults(cmd *cobra.Command, opts *renderOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("templates") {
		opts.Templates = cfg.Templates
	}
	if !flags.Changed("extension") {
		opts.Extension = cfg.Extension
	}
	if !flags.Changed("template-path") {
		opts.TemplatePath = cfg.TemplatePath
	}
	if !flags.Changed("sanitize") {
		opts.Sanitize = cfg.Sanitize
	}
	return nil
}

func runRender(ctx context.Context, opts renderOptions, driver promptDriver, stdout, stderr io.Writer) error {
	p, err := page.Load(opts.PagePath)
	if err != nil {
		return err
	}

	overrides, err := parseAssignments(opts.Set)
	if err != nil {
		return err
	}
	if p.Data == nil {
		p.Data = make(map[string]any, len(overrides))
	}
	maps.Copy(p.Data, overrides)
	if err := promptMissing(ctx, driver, &p, opts.Prompt); err != nil {
		return err
	}
	if p.TemplatePath == "" && opts.TemplatePath != "" {
		p.TemplatePath = opts.TemplatePath
	}

	engineOpts := []pongo.Option{pongo.WithBaseDir(opts.Templates)}
	if opts.Extension != "" {
		engineOpts = append(engineOpts, pongo.WithExtension(opts.Extension))
	}
	engine, err := viewmodel.NewEngine(engineOpts...)
	if err != nil {
		return err
	}

	vmOpts := []viewmodel.Option{viewmodel.WithTracing(events.WithParent(ctx))}
	if opts.Layout != "" {
		vmOpts = append(vmOpts, viewmodel.WithLayout(opts.Layout))
	}
	if opts.Sanitize {
		vmOpts = append(vmOpts, viewmodel.WithSanitizer())
	}
	var registry *prometheus.Registry
	if opts.Metrics {
		registry = prometheus.NewRegistry()
		vmOpts = append(vmOpts, viewmodel.WithMetrics(events.NewMetrics(events.WithRegistry(registry))))
	}

	vm, err := p.Build(engine, vmOpts...)
	if err != nil {
		return err
	}
	html, err := vm.RenderToString()
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stderr, "Page written to %s\n", opts.Output)
	} else {
		fmt.Fprintln(stdout, html)
	}

	if registry != nil {
		return writeMetrics(stderr, registry)
	}
	return nil
}

func promptMissing(ctx context.Context, driver promptDriver, p *page.Page, keys []string) error {
	missing := p.MissingKeys(keys)
	if len(missing) == 0 {
		return nil
	}
	if driver == nil {
		return fmt.Errorf("missing data keys %s and no prompt available", strings.Join(missing, ", "))
	}
	for _, key := range missing {
		value, err := driver.Input(ctx, inputConfig{
			Message: fmt.Sprintf("Value for %q:", key),
			Help:    "Stored in the page data before rendering.",
			Validator: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("value is required")
				}
				return nil
			},
		})
		if err != nil {
			return fmt.Errorf("prompt %s: %w", key, err)
		}
		p.Data[key] = value
	}
	return nil
}

func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func writeMetrics(w io.Writer, registry prometheus.Gatherer) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
