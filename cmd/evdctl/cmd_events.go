package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hepevd/internal/codec"
	"hepevd/internal/repository/sqlite"
	"hepevd/internal/service"
)

var (
	exportFormat string
	exportOutput string
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Validate event files and add them to the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		for _, path := range args {
			rec, err := svc.LoadFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				styles.OK.Render("imported"), styles.ID.Render(rec.ID), rec.Name)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored events, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		records, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), styles.Muted.Render("no events stored in "+cfg.Database.Path))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), renderRecords(records))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Write a stored event as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := codec.ForFormat(exportFormat)
		if err != nil {
			return err
		}

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOutput, err)
			}
			defer f.Close()
			out = f
		}

		w := bufio.NewWriter(out)
		if err := svc.Export(cmd.Context(), args[0], c, w); err != nil {
			return err
		}
		return w.Flush()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json or yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

// openService opens the configured store behind an event service
func openService() (*service.EventService, func(), error) {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewEventService(repo, service.NewEventBus())
	if err := svc.Restore(context.Background()); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return svc, func() { repo.Close() }, nil
}
