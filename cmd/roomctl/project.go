package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"roomdesigner/internal/design/models"
	"roomdesigner/internal/design/store"

	"github.com/spf13/cobra"
)

var errNoCurrent = errors.New("no current project, run 'roomctl project new' or 'roomctl project load'")

// ============================================================
// Projects
// ============================================================

func (c *cli) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p"},
		Short:   "Create, list, load, save and delete projects",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "new [name]",
			Short: "Create a project and make it current",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withStore(cmd, func(st *store.Store) error {
					name := fmt.Sprintf("Design %d", len(st.Projects())+1)
					if len(args) == 1 {
						name = args[0]
					}
					p := st.CreateNewProject(name)
					c.printf("Created %q (%s)\n", p.Name, p.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List saved projects",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withStore(cmd, func(st *store.Store) error {
					cur, hasCur := st.CurrentProject()
					w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "\tID\tNAME\tITEMS\tUPDATED")
					for _, p := range st.Projects() {
						marker := ""
						if hasCur && cur.ID == p.ID {
							marker = "*"
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", marker, p.ID, p.Name, len(p.Furniture), p.UpdatedAt.Format("2006-01-02 15:04"))
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "load <id>",
			Short: "Make a saved project current",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withStore(cmd, func(st *store.Store) error {
					if _, ok := st.LoadProject(args[0]); !ok {
						return fmt.Errorf("project %s not found", args[0])
					}
					c.printf("Loaded %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "save",
			Short: "Write the current project back to the project list",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withStore(cmd, func(st *store.Store) error {
					saved, ok := st.SaveProject()
					if !ok {
						return errNoCurrent
					}
					c.printf("Saved %q\n", saved.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete a saved project",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withStore(cmd, func(st *store.Store) error {
					if !st.DeleteProject(args[0]) {
						return fmt.Errorf("project %s not found", args[0])
					}
					c.printf("Deleted %s\n", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

// ============================================================
// Room
// ============================================================

func (c *cli) roomCmd() *cobra.Command {
	var (
		width, length, height float64
		shape, floor, wall    string
		preset                string
		save                  bool
	)

	set := &cobra.Command{
		Use:   "set",
		Short: "Change room dimensions, shape or colors of the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.RoomPatch
			if preset != "" {
				p, ok := models.PresetByName(preset)
				if !ok {
					return fmt.Errorf("unknown color preset %q", preset)
				}
				patch = p.Patch()
			}
			flags := cmd.Flags()
			if flags.Changed("width") {
				patch.Width = &width
			}
			if flags.Changed("length") {
				patch.Length = &length
			}
			if flags.Changed("height") {
				patch.Height = &height
			}
			if flags.Changed("shape") {
				s := models.Shape(shape)
				patch.Shape = &s
			}
			if flags.Changed("floor") {
				patch.FloorColor = &floor
			}
			if flags.Changed("wall") {
				patch.WallColor = &wall
			}
			if err := models.Validate(patch); err != nil {
				return err
			}

			return c.withStore(cmd, func(st *store.Store) error {
				update := st.UpdateRoomConfig
				if save {
					update = st.UpdateRoomConfigAndSave
				}
				cur, ok := update(patch)
				if !ok {
					return errNoCurrent
				}
				rc := cur.RoomConfig
				c.printf("Room: %g x %g x %g m, %s, floor %s, walls %s\n", rc.Width, rc.Length, rc.Height, rc.Shape, rc.FloorColor, rc.WallColor)
				return nil
			})
		},
	}
	f := set.Flags()
	f.Float64Var(&width, "width", 0, "width in meters (1-20)")
	f.Float64Var(&length, "length", 0, "length in meters (1-20)")
	f.Float64Var(&height, "height", 0, "ceiling height in meters (2-5)")
	f.StringVar(&shape, "shape", "", "rectangle, square or l-shape")
	f.StringVar(&floor, "floor", "", "floor color, #RRGGBB")
	f.StringVar(&wall, "wall", "", "wall color, #RRGGBB")
	f.StringVar(&preset, "preset", "", "color preset name, e.g. \"Warm Beige\"")
	f.BoolVar(&save, "save", false, "save the project afterwards")

	presets := &cobra.Command{
		Use:   "presets",
		Short: "List room color presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range models.ColorPresets() {
				c.printf("%-14s floor %s  walls %s\n", p.Name, p.Floor, p.Wall)
			}
		},
	}

	cmd := &cobra.Command{Use: "room", Short: "Edit the room of the current project"}
	cmd.AddCommand(set, presets)
	return cmd
}
