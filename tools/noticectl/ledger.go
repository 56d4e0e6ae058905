package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	rentapp "rentnotice-cloud/internal/rent/application"
	"rentnotice-cloud/internal/rent/infrastructure/sqlite"
	rentinterfaces "rentnotice-cloud/internal/rent/interfaces"
)

func newLedgerCmd(opts *globalOptions) *cobra.Command {
	var asOfFlag, xlsxPath, pdfPath string
	cmd := &cobra.Command{
		Use:   "ledger TENANT_ID",
		Short: "Print the twelve-month ledger of a tenant, or export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := appClock.Now()
			if asOfFlag != "" {
				parsed, err := time.Parse(time.DateOnly, asOfFlag)
				if err != nil {
					return fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
				}
				asOf = parsed
			}
			return withStore(cmd.Context(), opts, func(store *sqlite.Store) error {
				svc, err := rentapp.NewLedgerService(store, store, appClock)
				if err != nil {
					return err
				}
				view, err := svc.LedgerAsOf(cmd.Context(), opts.ownerID, args[0], asOf)
				if err != nil {
					return err
				}
				if xlsxPath != "" {
					if err := exportLedger(view, rentinterfaces.FormatXLSX, xlsxPath); err != nil {
						return err
					}
				}
				if pdfPath != "" {
					if err := exportLedger(view, rentinterfaces.FormatPDF, pdfPath); err != nil {
						return err
					}
				}
				if xlsxPath != "" || pdfPath != "" {
					return nil
				}
				return printLedger(cmd, view)
			})
		},
	}
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "Ledger date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the ledger as XLSX to this file")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Write the ledger as PDF to this file")
	return cmd
}

func exportLedger(view *rentapp.LedgerView, format, path string) error {
	file, err := rentinterfaces.ExportLedger(view, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, file.Data, 0o644)
}

func printLedger(cmd *cobra.Command, view *rentapp.LedgerView) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s) as of %s\n", view.Tenant.Name, view.Tenant.ID, view.AsOf.Format(time.DateOnly))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tEXPECTED\tPAID\tSTATUS")
	for _, row := range view.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Period, row.Expected.StringFixed(2), row.Paid.StringFixed(2), row.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "expected %s paid %s outstanding %s\n",
		view.Summary.Expected.StringFixed(2), view.Summary.Paid.StringFixed(2), view.Summary.Outstanding.StringFixed(2))
	return nil
}
