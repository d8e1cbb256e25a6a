package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/katachat/katareport/internal/birthdate"
	"github.com/katachat/katareport/internal/delivery"
	"github.com/katachat/katareport/internal/report"
	"github.com/katachat/katareport/pkg/models"
	"github.com/katachat/katareport/pkg/utils"
)

// --- Render Command ---

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a report from the command line",
	Long: `Run the report pipeline for one submission without starting the server.

Examples:
  katareport render --name Mei --gender 女 --day 15 --month 六月 --year 2015 --text
  katareport render --set en-employee --day 3 --month March --year 1990 --out report.html
  katareport render --day 1 --month 7 --year 2016 --pdf report.pdf --send`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		set, _ := flags.GetString("set")
		if set == "" {
			set = cfg.Report.DefaultSet
		}
		req := models.SubmissionRequest{
			Name:        stringFlag(cmd, "name"),
			ChineseName: stringFlag(cmd, "chinese-name"),
			Gender:      stringFlag(cmd, "gender"),
			Country:     stringFlag(cmd, "country"),
			Phone:       stringFlag(cmd, "phone"),
			Email:       stringFlag(cmd, "email"),
			Referrer:    stringFlag(cmd, "referrer"),
			DOBMonth:    stringFlag(cmd, "month"),
		}
		if day, _ := flags.GetInt("day"); day > 0 {
			req.DOBDay = models.NewFlexInt(day)
		}
		if year, _ := flags.GetInt("year"); year > 0 {
			req.DOBYear = models.NewFlexInt(year)
		}

		send, _ := flags.GetBool("send")
		var gateway delivery.Gateway = discardGateway{}
		if send {
			gateway = nil
		}
		svc, err := buildServices(gateway)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		start := time.Now()
		res, err := svc.analyzer.Analyze(ctx, set, req)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		if asJSON, _ := flags.GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res.Response()); err != nil {
				return err
			}
		} else if asText, _ := flags.GetBool("text"); asText {
			s, err := svc.registry.Lookup(res.Report.TemplateSet)
			if err != nil {
				return err
			}
			r, err := report.NewRenderer(s, report.Options{Style: cfg.Report.ChartStyle, Clock: svc.clock})
			if err != nil {
				return err
			}
			fmt.Print(r.Text(report.Input{
				ReportID:   res.Report.ID,
				Identity:   req.Identity(),
				Paragraphs: res.Report.Paragraphs,
				Groups:     res.Report.Groups,
			}))
		}

		if out, _ := flags.GetString("out"); out != "" {
			if err := os.WriteFile(out, []byte(res.Documents.Full), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(os.Stderr, "📄 Full report written to %s\n", out)
		}
		if out, _ := flags.GetString("summary-out"); out != "" {
			if err := os.WriteFile(out, []byte(res.Documents.Summary), 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			fmt.Fprintf(os.Stderr, "📄 Summary written to %s\n", out)
		}
		if out, _ := flags.GetString("pdf"); out != "" {
			pcfg := report.DefaultPDFConfig()
			pcfg.OutputPath = out
			path, err := report.ExportPDF(ctx, res.Documents.Full, pcfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "📑 Exported to %s\n", path)
		}

		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Delivery.Timeout()+5*time.Second)
		defer cancel()
		if err := svc.analyzer.Drain(drainCtx); err != nil {
			return fmt.Errorf("delivery still pending: %w", err)
		}
		if send {
			fmt.Fprintf(os.Stderr, "✉️  Report %s dispatched (see log for the delivery result)\n", res.Report.ID)
		}
		fmt.Fprintf(os.Stderr, "✅ Rendered %s report %s in %s\n", res.Report.TemplateSet, res.Report.ID, report.FormatDuration(elapsed))
		return nil
	},
}

func init() {
	f := renderCmd.Flags()
	f.String("set", "", "template set ID or language tag (default: report.default_set)")
	f.String("name", "", "name")
	f.String("chinese-name", "", "Chinese name")
	f.String("gender", "", "gender")
	f.String("country", "", "country")
	f.String("phone", "", "phone")
	f.String("email", "", "email")
	f.String("referrer", "", "referrer")
	f.Int("day", 0, "birth day")
	f.String("month", "", "birth month (numeral, English or Chinese name)")
	f.Int("year", 0, "birth year")
	f.String("out", "", "write the full HTML report to this file")
	f.String("summary-out", "", "write the summary HTML to this file")
	f.String("pdf", "", "export the full report as PDF to this file")
	f.Bool("send", false, "mail the full report through the configured gateway")
	f.Bool("text", false, "print the report as plain text")
	f.Bool("json", false, "print the JSON response")
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// discardGateway drops reports; render only mails with --send.
type discardGateway struct{}

func (discardGateway) Name() string { return "discard" }

func (discardGateway) Send(context.Context, string, string) error { return nil }

// --- Resolve Age Command ---

var resolveAgeCmd = &cobra.Command{
	Use:   "resolve-age [day] [month] [year]",
	Short: "Resolve an age from a birthdate",
	Long: `Resolve the age (in Singapore time) for a birthdate whose month may be
a numeral, an English month name or a Chinese month name.

Examples:
  katareport resolve-age 15 六月 2015
  katareport resolve-age 29 February 2016`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("day must be a number: %w", err)
		}
		year, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("year must be a number: %w", err)
		}

		clock := utils.SystemClock(utils.LoadLocation(cfg.Report.Timezone, 8*60*60))
		res, err := birthdate.NewResolver(clock).ResolveDate(day, args[1], year)
		if err != nil {
			return err
		}
		fmt.Printf("🎂 Birthdate: %s\n", utils.FormatDate(res.Birthdate))
		fmt.Printf("   Age:       %d\n", res.Age)
		return nil
	},
}
