package main

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	viewmodel "github.com/goliatone/go-viewmodel"
)

func messageCmd() *cobra.Command {
	var (
		layout string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "message <text>",
		Short: "Render a message with the built-in templates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := viewmodel.NewEngine()
			if err != nil {
				return err
			}
			html, err := viewmodel.RenderMessage(engine, layout, strings.Join(args, " "), map[string]any{
				"title": title,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().StringVarP(&layout, "layout", "l", viewmodel.DefaultLayout, "layout identifier")
	cmd.Flags().StringVar(&title, "title", "", "document title")

	return cmd
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fs.WalkDir(viewmodel.EmbeddedTemplates(), ".", func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
}
