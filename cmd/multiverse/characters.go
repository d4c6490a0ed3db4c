package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/config"
)

func newCharactersCmd(load func() (config.Config, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"ch"},
		Short:   "Query the character API",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	cmd.AddCommand(
		newListCmd(load, &asJSON),
		newGetCmd(load, &asJSON),
	)
	return cmd
}

func newListCmd(load func() (config.Config, error), asJSON *bool) *cobra.Command {
	var (
		status, gender, name string
		page                 int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(cmd, load)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			p := characters.ListParams{
				Status: characters.ParseStatus(status),
				Gender: characters.ParseGender(gender),
				Name:   name,
				Page:   max(page, 1),
			}
			res, err := d.svc.List(cmd.Context(), p)
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeList(cmd.OutOrStdout(), p.Page, res)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "alive, dead or unknown")
	cmd.Flags().StringVar(&gender, "gender", "", "female, male, genderless or unknown")
	cmd.Flags().StringVar(&name, "name", "", "name search term")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newGetCmd(load func() (config.Config, error), asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], characters.ErrInvalidID)
			}

			d, err := openDeps(cmd, load)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			c, err := d.svc.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			return writeCharacter(cmd.OutOrStdout(), c)
		},
	}
}

// openDeps builds the shared services. Logs go to stderr so stdout stays
// machine readable.
func openDeps(cmd *cobra.Command, load func() (config.Config, error)) (*deps, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	return newDeps(cmd.Context(), cfg, cmd.ErrOrStderr())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeList(w io.Writer, page int, res *characters.Page) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSPECIES\tGENDER\tLOCATION")
	for _, c := range res.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, c.Species, c.Gender, c.Location.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npage %d of %d, %d characters\n", page, res.Info.Pages, res.Info.Count)
	return err
}

func writeCharacter(w io.Writer, c *characters.Character) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", strconv.Itoa(c.ID)},
		{"Name", c.Name},
		{"Status", c.Status},
		{"Species", c.Species},
		{"Type", c.Type},
		{"Gender", c.Gender},
		{"Origin", c.Origin.Name},
		{"Location", c.Location.Name},
		{"Episodes", strconv.Itoa(len(c.Episode))},
		{"First seen", c.FirstEpisode()},
		{"Last seen", c.LastEpisode()},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}
