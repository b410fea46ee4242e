package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"roomdesigner/internal/design/plan"
	"roomdesigner/internal/design/store"
	"roomdesigner/internal/discovery"

	"github.com/spf13/cobra"
)

// ============================================================
// Export & import
// ============================================================

func (c *cli) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export <svg|pdf>",
		Short:     "Export the current project as a floor plan",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"svg", "pdf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := args[0]
			if format != "svg" && format != "pdf" {
				return fmt.Errorf("unknown format %q, want svg or pdf", format)
			}
			if format == "pdf" && output == "" {
				return fmt.Errorf("pdf export needs --output")
			}

			return c.withStore(cmd, func(st *store.Store) error {
				cur, ok := st.CurrentProject()
				if !ok {
					return errNoCurrent
				}

				var w io.Writer = c.out
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}

				if format == "pdf" {
					if err := plan.WritePDF(w, cur); err != nil {
						return err
					}
				} else {
					svg, err := plan.NewRenderer().Render(cur, "")
					if err != nil {
						return err
					}
					if _, err := io.WriteString(w, svg); err != nil {
						return err
					}
				}
				if output != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty (svg only)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <plan.svg>",
		Short: "Create and save a project from an exported SVG plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			im, err := plan.Import(f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			return c.withStore(cmd, func(st *store.Store) error {
				projectName := name
				if projectName == "" {
					projectName = im.Name
				}
				if projectName == "" {
					projectName = fmt.Sprintf("Design %d", len(st.Projects())+1)
				}

				p := st.CreateProjectFrom(projectName, im.RoomPatch(), im.Furniture)
				c.printf("Imported %q (%s) with %d items\n", p.Name, p.ID, len(im.Furniture))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name, defaults to the plan title")
	return cmd
}

// ============================================================
// Discovery
// ============================================================

func (c *cli) discoverCmd() *cobra.Command {
	var timeout time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find designer services on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := discovery.Browse(cmd.Context(), timeout)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(found)
			}
			if len(found) == 0 {
				c.printf("No designer services found\n")
				return nil
			}
			for _, inst := range found {
				c.printf("%s\t%s\n", inst.Name, inst.URL())
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "how long to listen for answers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
