package clicmds

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/pagek/store"
)

// ResultsFlags for the results command
func ResultsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
			Value: "pagektmp",
		},
		&cli.StringFlag{
			Name:  "run",
			Usage: "only print results of this run",
			Value: "",
		},
		&cli.BoolFlag{
			Name:  "dump",
			Usage: "dump every result in full",
			Value: false,
		},
	}
}

// Results prints stored check results
func Results(ctx *cli.Context) error {
	results, err := store.Open(ctx.String("datadir"))
	if err != nil {
		log.Error().Err(err).Msg("failed to init database for viewing")
		return err
	}
	defer results.Close()

	entries, err := results.Results(ctx.String("run"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("No result entries found")
	}

	w := ctx.App.Writer
	if ctx.Bool("dump") {
		spew.Fdump(w, entries)
		return nil
	}

	fmt.Fprintf(w, "Had %d results\n", len(entries))
	for _, entry := range entries {
		status := "PASS"
		if !entry.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s %s %s %s (%s)\n", entry.RunID, status, entry.Page, entry.URL, entry.Duration)
		if len(entry.Failures) > 0 {
			fmt.Fprintf(w, "\t%s\n", strings.Join(entry.Failures, "\n\t"))
		}
	}
	return nil
}
