// ledgerctl operates on the configured store without the HTTP server.
//
//	ledgerctl export -o backup.json
//	ledgerctl import -i backup.json
//	ledgerctl report [--pdf]
//	ledgerctl seed
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nazim1903/Businesstracker/internal/config"
	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/infra"
	"github.com/nazim1903/Businesstracker/internal/repository"
	"github.com/nazim1903/Businesstracker/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

type env struct {
	cfg     *config.Config
	db      *gorm.DB
	ledger  service.LedgerService
	reports service.ReportService
	backup  service.BackupService
}

func open() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, db, err := infra.OpenStore(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return newEnv(cfg, store, db), nil
}

func newEnv(cfg *config.Config, store repository.Store, db *gorm.DB) *env {
	locks := service.NewLockSet()
	return &env{
		cfg: cfg,
		db:  db,
		ledger: service.NewLedgerService(store, service.LedgerConfig{
			DefaultCostRatio: cfg.CostRatio(),
			Locks:            locks,
		}),
		reports: service.NewReportService(store, nil),
		backup:  service.NewBackupService(store, locks, nil),
	}
}

func (e *env) close() { infra.CloseDB(e.db) }

// withEnv opens the store for one command.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := open()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer e.close()
		return fn(c, e)
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("ledgerctl failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ledgerctl",
		Usage: "export, import and report on the business ledger",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "write the whole dataset as a backup document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "file to write (default stdout)"},
				},
				Action: withEnv(exportCmd),
			},
			{
				Name:  "import",
				Usage: "replace the whole dataset from a backup document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "backup file", Required: true},
				},
				Action: withEnv(importCmd),
			},
			{
				Name:  "report",
				Usage: "print the cash-flow report",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "pdf", Usage: "also save a PDF under PDF_STORAGE_PATH"},
				},
				Action: withEnv(reportCmd),
			},
			{
				Name:   "seed",
				Usage:  "create a demo customer with an order, a deposit and a completed sale",
				Action: withEnv(seedCmd),
			},
		},
	}
}

func exportCmd(c *cli.Context, e *env) error {
	doc, err := e.backup.Export(c.Context)
	if err != nil {
		return err
	}
	path := c.String("output")
	if path == "" {
		return encodeJSON(c.App.Writer, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeAndClose(f, doc); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeAndClose encodes v into w and closes it. A failed close is returned
// because buffered bytes may not have reached the file.
func writeAndClose(w io.WriteCloser, v any) (err error) {
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return encodeJSON(w, v)
}

func importCmd(c *cli.Context, e *env) error {
	f, err := os.Open(c.String("input"))
	if err != nil {
		return err
	}
	defer f.Close()

	var doc dto.BackupDocument
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return fmt.Errorf("decode %s: %w", c.String("input"), err)
	}
	summary, err := e.backup.Import(c.Context, &doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d customers, %d orders, %d payments, %d products (version %s)\n",
		summary.Customers, summary.Orders, summary.Payments, summary.Products, summary.Version)
	return nil
}

func reportCmd(c *cli.Context, e *env) error {
	r, err := e.reports.Dashboard(c.Context)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Total incoming     %12s\n", r.TotalIncoming.StringFixed(2))
	fmt.Fprintf(w, "Total outgoing     %12s\n", r.TotalOutgoing.StringFixed(2))
	fmt.Fprintf(w, "Company payments   %12s\n", r.TotalCompanyPayments.StringFixed(2))
	fmt.Fprintf(w, "Personal account   %12s\n", r.TotalPersonalPayments.StringFixed(2))
	fmt.Fprintf(w, "Current balance    %12s\n", r.CurrentBalance.StringFixed(2))
	fmt.Fprintf(w, "Active deposits    %12s  (%d orders)\n", r.ActiveDepositsTotal.StringFixed(2), len(r.ActiveOrdersWithDeposits))
	fmt.Fprintf(w, "Pending customers  %12s  (%d customers)\n", r.TotalPendingFromCustomers.StringFixed(2), len(r.CustomerBalances))
	fmt.Fprintf(w, "Total profit       %12s\n", r.TotalProfit.StringFixed(2))

	if c.Bool("pdf") {
		name := fmt.Sprintf("cash_flow_%s.pdf", time.Now().Format("20060102_150405"))
		path, err := infra.SavePDF(e.cfg.PDFStoragePath, name, func(w io.Writer) error {
			return infra.WriteCashFlowPDF(w, r)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "PDF written to %s\n", path)
	}
	return nil
}
