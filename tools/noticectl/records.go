package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	rentapp "rentnotice-cloud/internal/rent/application"
	"rentnotice-cloud/internal/rent/infrastructure/sqlite"
)

func newTenantCmd(opts *globalOptions) *cobra.Command {
	tenantCmd := &cobra.Command{Use: "tenant", Short: "Manage tenants"}

	var (
		name, unit, email, rentAmount, lateFee string
		dueDay                                 int
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tenant; omitted due day and late fee come from settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record := map[string]any{"name": name, "unit": unit, "rent": json.Number(rentAmount)}
			if email != "" {
				record["email"] = email
			}
			if cmd.Flags().Changed("due-day") {
				record["due_day"] = dueDay
			}
			if cmd.Flags().Changed("late-fee") {
				record["late_fee_flat"] = json.Number(lateFee)
			}
			body, err := json.Marshal(record)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), opts, func(store *sqlite.Store) error {
				svc, err := rentapp.NewTenantService(store, store, store, appClock)
				if err != nil {
					return err
				}
				tenant, err := svc.Create(cmd.Context(), opts.ownerID, body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tenant %s added: %s due day %d late fee %s\n",
					tenant.ID, tenant.Name, tenant.DueDay, tenant.LateFeeFlat.StringFixed(2))
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Tenant name")
	addCmd.Flags().StringVar(&unit, "unit", "", "Unit")
	addCmd.Flags().StringVar(&email, "email", "", "Email address")
	addCmd.Flags().StringVar(&rentAmount, "rent", "", "Monthly rent")
	addCmd.Flags().IntVar(&dueDay, "due-day", 0, "Day of month rent is due")
	addCmd.Flags().StringVar(&lateFee, "late-fee", "0", "Flat late fee")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("rent")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants with their current period status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(store *sqlite.Store) error {
				svc, err := rentapp.NewTenantService(store, store, store, appClock)
				if err != nil {
					return err
				}
				list, err := svc.List(cmd.Context(), opts.ownerID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, t := range list {
					late := ""
					if t.Late {
						late = " LATE"
					}
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s%s\n", t.ID, t.Name, t.Period, t.CurrentStatus, t.Outstanding.StringFixed(2), late)
				}
				return nil
			})
		},
	}

	tenantCmd.AddCommand(addCmd, listCmd)
	return tenantCmd
}

func newPaymentCmd(opts *globalOptions) *cobra.Command {
	paymentCmd := &cobra.Command{Use: "payment", Short: "Record payments"}

	var tenantID, period, amount string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a payment for a period (YYYY-MM)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(map[string]any{"period": period, "amount": json.Number(amount)})
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), opts, func(store *sqlite.Store) error {
				svc, err := rentapp.NewPaymentService(store, store, appClock)
				if err != nil {
					return err
				}
				payment, err := svc.Record(cmd.Context(), opts.ownerID, tenantID, body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "payment %s recorded: %s %s\n", payment.ID, payment.Period, payment.Amount.StringFixed(2))
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant id")
	addCmd.Flags().StringVar(&period, "period", "", "Period, YYYY-MM")
	addCmd.Flags().StringVar(&amount, "amount", "", "Amount paid")
	_ = addCmd.MarkFlagRequired("tenant")
	_ = addCmd.MarkFlagRequired("period")
	_ = addCmd.MarkFlagRequired("amount")

	paymentCmd.AddCommand(addCmd)
	return paymentCmd
}

func newSettingsCmd(opts *globalOptions) *cobra.Command {
	settingsCmd := &cobra.Command{Use: "settings", Short: "Owner settings"}

	var (
		businessName, contactInfo, defaultLateFee string
		defaultDueDay                             int
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the owner settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record := map[string]any{"business_name": businessName, "contact_info": contactInfo}
			if cmd.Flags().Changed("default-due-day") {
				record["default_due_day"] = defaultDueDay
			}
			if cmd.Flags().Changed("default-late-fee") {
				record["default_late_fee_flat"] = json.Number(defaultLateFee)
			}
			body, err := json.Marshal(record)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), opts, func(store *sqlite.Store) error {
				svc, err := rentapp.NewSettingsService(store)
				if err != nil {
					return err
				}
				if _, err := svc.Save(cmd.Context(), opts.ownerID, body); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "settings saved")
				return nil
			})
		},
	}
	setCmd.Flags().StringVar(&businessName, "business-name", "", "Business or management name")
	setCmd.Flags().StringVar(&contactInfo, "contact-info", "", "Contact info printed under the signature")
	setCmd.Flags().IntVar(&defaultDueDay, "default-due-day", 0, "Due day for new tenants")
	setCmd.Flags().StringVar(&defaultLateFee, "default-late-fee", "0", "Late fee for new tenants")

	settingsCmd.AddCommand(setCmd)
	return settingsCmd
}
