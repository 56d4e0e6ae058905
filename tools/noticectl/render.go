package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rentnotice-cloud/internal/config"
	noticeapp "rentnotice-cloud/internal/notice/application"
	notice "rentnotice-cloud/internal/notice/domain"
	rent "rentnotice-cloud/internal/rent/domain"
)

// noticeInput is the YAML document accepted by the render command.
type noticeInput struct {
	AsOf   string `yaml:"as_of"`
	Owner  struct {
		BusinessName string `yaml:"business_name"`
		ContactInfo  string `yaml:"contact_info"`
	} `yaml:"owner"`
	Tenant struct {
		Name        string `yaml:"name"`
		Unit        string `yaml:"unit"`
		Email       string `yaml:"email"`
		Rent        string `yaml:"rent"`
		DueDay      int    `yaml:"due_day"`
		LateFeeFlat string `yaml:"late_fee_flat"`
	} `yaml:"tenant"`
	Sections notice.EditableSections `yaml:"sections"`
}

func (in noticeInput) domain(now time.Time) (rent.Tenant, rent.OwnerSettings, time.Time, error) {
	asOf := now
	if in.AsOf != "" {
		parsed, err := time.Parse(time.DateOnly, in.AsOf)
		if err != nil {
			return rent.Tenant{}, rent.OwnerSettings{}, time.Time{}, fmt.Errorf("as_of must be YYYY-MM-DD: %w", err)
		}
		asOf = parsed
	}
	amount, err := optionalDecimal(in.Tenant.Rent)
	if err != nil {
		return rent.Tenant{}, rent.OwnerSettings{}, time.Time{}, fmt.Errorf("tenant.rent: %w", err)
	}
	fee, err := optionalDecimal(in.Tenant.LateFeeFlat)
	if err != nil {
		return rent.Tenant{}, rent.OwnerSettings{}, time.Time{}, fmt.Errorf("tenant.late_fee_flat: %w", err)
	}
	tenant := rent.Tenant{
		Name:        strings.TrimSpace(in.Tenant.Name),
		Unit:        strings.TrimSpace(in.Tenant.Unit),
		Email:       strings.TrimSpace(in.Tenant.Email),
		Rent:        amount,
		DueDay:      in.Tenant.DueDay,
		LateFeeFlat: fee,
	}
	settings := rent.OwnerSettings{BusinessName: in.Owner.BusinessName, ContactInfo: in.Owner.ContactInfo}
	return tenant, settings, asOf, nil
}

func optionalDecimal(value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(value))
}

func newRenderCmd() *cobra.Command {
	var (
		inputPath, outPath, format, configPath string
		force                                  bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a notice from a YAML description to PDF or text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, inputPath)
			if err != nil {
				return err
			}
			var in noticeInput
			if err := yaml.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("notice input: %w", err)
			}
			tenant, settings, asOf, err := in.domain(appClock.Now())
			if err != nil {
				return err
			}

			opts := noticeapp.DefaultDocumentOptions()
			if configPath != "" {
				noticeCfg, err := config.LoadNoticeConfig(configPath)
				if err != nil {
					return err
				}
				opts = noticeCfg.DocumentOptions()
			}

			validation := notice.Validate(tenant, settings)
			for _, warning := range validation.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
			}
			if err := validation.Err(); err != nil && !force {
				var verr *notice.ValidationError
				if errors.As(err, &verr) {
					for _, msg := range verr.Blocking {
						fmt.Fprintln(cmd.ErrOrStderr(), "blocking:", msg)
					}
				}
				return err
			}

			n := notice.BuildNotice(tenant, settings, opts.Sections(in.Sections), asOf)
			doc, err := noticeapp.RenderNotice(n, format, opts)
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				_, err := cmd.OutOrStdout().Write(doc.Data)
				return err
			}
			if err := os.WriteFile(outPath, doc.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d pages)\n", outPath, doc.Pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Notice YAML file, - for stdin")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file, stdout when empty")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Output format: pdf or txt")
	cmd.Flags().StringVar(&configPath, "config", os.Getenv("NOTICE_CONFIG"), "Notice document YAML (layout, title, default sections)")
	cmd.Flags().BoolVar(&force, "force", false, "Render even when required fields are missing")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
