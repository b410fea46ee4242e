package main

import (
	"fmt"
	"text/tabwriter"

	"roomdesigner/internal/design/models"
	"roomdesigner/internal/design/store"

	"github.com/spf13/cobra"
)

// ============================================================
// Furniture
// ============================================================

func (c *cli) furnitureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "furniture",
		Aliases: []string{"f"},
		Short:   "Place and edit furniture in the current project",
	}
	cmd.AddCommand(
		c.furnitureAddCmd(),
		c.furnitureListCmd(),
		c.furnitureUpdateCmd(),
		c.furnitureMoveCmd(),
		&cobra.Command{
			Use:     "remove <id>",
			Aliases: []string{"rm"},
			Short:   "Remove an item",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withStore(cmd, func(st *store.Store) error {
					if !st.RemoveFurniture(args[0]) {
						return notFound(st, args[0])
					}
					c.printf("Removed %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "duplicate <id>",
			Aliases: []string{"dup"},
			Short:   "Copy an item next to itself",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withStore(cmd, func(st *store.Store) error {
					item, ok := st.DuplicateFurniture(args[0])
					if !ok {
						return notFound(st, args[0])
					}
					c.printf("Duplicated %s as %s (%s)\n", args[0], item.Name, item.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "templates",
			Short: "List the furniture catalog",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TYPE\tNAME\tSIZE (W x H x D)\tCOLOR")
				for _, t := range models.Templates() {
					fmt.Fprintf(w, "%s\t%s\t%g x %g x %g\t%s\n", t.Type, t.Name, t.Size.Width, t.Size.Height, t.Size.Depth, t.Color)
				}
				w.Flush()
			},
		},
	)
	return cmd
}

func (c *cli) furnitureAddCmd() *cobra.Command {
	var x, z float64
	var name, color string

	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Add a catalog item (chair, table, sofa, bed, cabinet, shelf)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, ok := models.Template(models.FurnitureType(args[0]))
			if !ok {
				return fmt.Errorf("unknown furniture type %q", args[0])
			}
			spec.Position = models.Vec3{X: x, Z: z}
			if name != "" {
				spec.Name = name
			}
			if color != "" {
				spec.Color = color
			}
			if err := models.Validate(spec); err != nil {
				return err
			}

			return c.withStore(cmd, func(st *store.Store) error {
				item, ok := st.AddFurniture(spec)
				if !ok {
					return errNoCurrent
				}
				c.printf("Added %s (%s)\n", item.Name, item.ID)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 1, "x position in meters")
	cmd.Flags().Float64Var(&z, "z", 1, "z position in meters")
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the catalog name")
	cmd.Flags().StringVar(&color, "color", "", "color, #RRGGBB")
	return cmd
}

func (c *cli) furnitureListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items in the current project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st *store.Store) error {
				cur, ok := st.CurrentProject()
				if !ok {
					return errNoCurrent
				}
				w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tPOSITION\tROTATION\tCOLOR")
				for _, item := range cur.Furniture {
					fmt.Fprintf(w, "%s\t%s\t%s\t%.2f, %.2f, %.2f\t%.0f°\t%s\n",
						item.ID, item.Name, item.Type,
						item.Position.X, item.Position.Y, item.Position.Z,
						models.RadToDeg(item.Rotation.Y), item.Color)
				}
				return w.Flush()
			})
		},
	}
}

func (c *cli) furnitureUpdateCmd() *cobra.Command {
	var (
		name, color string
		x, y, z     float64
		rotation    float64
		scale       float64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change name, color, position, rotation or scale of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.FurniturePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("color") {
				patch.Color = &color
			}
			if flags.Changed("x") || flags.Changed("y") || flags.Changed("z") {
				patch.Position = &models.Vec3Patch{}
				if flags.Changed("x") {
					patch.Position.X = &x
				}
				if flags.Changed("y") {
					patch.Position.Y = &y
				}
				if flags.Changed("z") {
					patch.Position.Z = &z
				}
			}
			if flags.Changed("rotate") {
				rad := models.DegToRad(rotation)
				patch.Rotation = &models.Vec3Patch{Y: &rad}
			}
			if flags.Changed("scale") {
				if scale <= 0 {
					return fmt.Errorf("scale must be positive, got %g", scale)
				}
				patch.Scale = models.Vec3{X: scale, Y: scale, Z: scale}.Full()
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update")
			}
			if err := models.Validate(patch); err != nil {
				return err
			}

			return c.withStore(cmd, func(st *store.Store) error {
				if _, ok := st.UpdateFurniture(args[0], patch); !ok {
					return notFound(st, args[0])
				}
				c.printf("Updated %s\n", args[0])
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "display name")
	f.StringVar(&color, "color", "", "color, #RRGGBB")
	f.Float64Var(&x, "x", 0, "x position in meters")
	f.Float64Var(&y, "y", 0, "y position in meters")
	f.Float64Var(&z, "z", 0, "z position in meters")
	f.Float64Var(&rotation, "rotate", 0, "rotation around the vertical axis, degrees")
	f.Float64Var(&scale, "scale", 1, "uniform scale")
	return cmd
}

func (c *cli) furnitureMoveCmd() *cobra.Command {
	var x, z float64

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Drag an item on the floor; it stays half a meter inside the walls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st *store.Store) error {
				item, ok := st.MoveFurniture(args[0], models.Vec3{X: x, Z: z})
				if !ok {
					return notFound(st, args[0])
				}
				c.printf("Moved %s to %.2f, %.2f\n", args[0], item.Position.X, item.Position.Z)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "target x in meters")
	cmd.Flags().Float64Var(&z, "z", 0, "target z in meters")
	return cmd
}

func notFound(st *store.Store, id string) error {
	if _, ok := st.CurrentProject(); !ok {
		return errNoCurrent
	}
	return fmt.Errorf("furniture %s not found", id)
}
