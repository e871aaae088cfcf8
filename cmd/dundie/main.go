// Command dundie manages the Dunder Mifflin rewards ledger from the shell.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"dundie-rewards/internal/app"
	"dundie-rewards/internal/auth"
	"dundie-rewards/internal/config"
	"dundie-rewards/internal/core"
	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/logger"
	"dundie-rewards/internal/report"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errUsage
	}

	switch args[0] {
	case "load":
		return runLoad(ctx, args[1:], stdout, stderr)
	case "show":
		return runShow(ctx, args[1:], stdout, stderr)
	case "add":
		return runAdd(ctx, args[1:], stdout, stderr, false)
	case "remove":
		return runAdd(ctx, args[1:], stdout, stderr, true)
	case "history":
		return runHistory(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Dunder Mifflin Rewards CLI")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  dundie <command> [options]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  load      Load employees from a CSV file")
	fmt.Fprintln(w, "  show      Show employees, balances and converted totals")
	fmt.Fprintln(w, "  add       Give points to employees (EMPLOYEE_EMAIL/EMPLOYEE_PASSWORD)")
	fmt.Fprintln(w, "  remove    Take points from employees (EMPLOYEE_EMAIL/EMPLOYEE_PASSWORD)")
	fmt.Fprintln(w, "  history   List an employee's transactions")
	fmt.Fprintln(w, "  help      Show this help message")
	fmt.Fprintln(w, "\nRun 'dundie <command> -h' for more information on a command.")
}

// ---------- shared ----------

type session struct {
	app *app.App
	ctx context.Context
}

func open(ctx context.Context, configPath string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, zl)
	if err != nil {
		return nil, err
	}
	return &session{app: a, ctx: logger.WithContext(ctx, zl)}, nil
}

func (s *session) close() {
	_ = s.app.Log.Sync()
	if err := s.app.Close(); err != nil {
		s.app.Log.Warn("close", zap.Error(err))
	}
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("DUNDIE_CONFIG"), "path to config.yaml")
	return fs, configPath
}

func writeViews(w io.Writer, format string, views []core.EmployeeView) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	return report.Write(w, format, core.Table(views))
}

// ---------- commands ----------

func runLoad(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("load", stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: dundie load [-config FILE] PEOPLE.csv")
		return errUsage
	}

	s, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer s.close()

	result, err := s.app.Service.Load(s.ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	t := report.Table{Header: []string{"name", "dept", "role", "email", "currency", "balance", "created"}}
	for _, r := range result.Results {
		t.Rows = append(t.Rows, []string{
			r.Name, r.Department, r.Role, r.Email, r.Currency,
			r.Balance.StringFixed(ledger.BalancePlaces), strconv.FormatBool(r.Created),
		})
	}
	if err := report.WriteTable(stdout, t); err != nil {
		return err
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintf(stderr, "skipped: %v\n", skipped)
	}
	return nil
}

func runShow(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("show", stderr)
	email := fs.String("email", "", "filter by email")
	dept := fs.String("dept", "", "filter by department")
	output := fs.String("output", "table", "table, json, csv or xlsx")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer s.close()

	views, err := s.app.Service.Read(s.ctx, core.Query{Email: *email, Department: *dept})
	if err != nil {
		return err
	}
	return writeViews(stdout, *output, views)
}

func runAdd(ctx context.Context, args []string, stdout, stderr io.Writer, negate bool) error {
	name := "add"
	if negate {
		name = "remove"
	}
	fs, configPath := newFlagSet(name, stderr)
	email := fs.String("email", "", "target employee email")
	dept := fs.String("dept", "", "target department")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Usage: dundie %s [-email EMAIL] [-dept DEPT] VALUE\n", name)
		return errUsage
	}
	value, err := decimal.NewFromString(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", fs.Arg(0), err)
	}
	if err := ledger.CheckPrecision(value); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return errUsage
	}
	if negate {
		value = value.Neg()
	}

	s, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer s.close()

	actor, err := auth.Authenticate(s.ctx, s.app.DB, auth.CredentialsFromEnv())
	if err != nil {
		return err
	}

	q := core.Query{Email: *email, Department: *dept}
	msg, err := s.app.Service.Update(s.ctx, actor, value, q)
	if err != nil {
		return err
	}
	if msg != "" {
		fmt.Fprintln(stdout, msg)
		return nil
	}

	views, err := s.app.Service.Read(s.ctx, q)
	if err != nil {
		return err
	}
	return writeViews(stdout, report.FormatTable, views)
}

func runHistory(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("history", stderr)
	limit := fs.Int("limit", 20, "number of transactions to show")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: dundie history [-limit N] EMAIL")
		return errUsage
	}

	s, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer s.close()

	txns, err := s.app.Service.History(s.ctx, fs.Arg(0), *limit)
	if err != nil {
		return err
	}

	t := report.Table{Header: []string{"date", "value", "description", "actor"}}
	for _, txn := range txns {
		t.Rows = append(t.Rows, []string{
			txn.Date.UTC().Format(time.RFC3339),
			txn.Value.StringFixed(ledger.BalancePlaces),
			txn.Description,
			txn.Actor,
		})
	}
	return report.WriteTable(stdout, t)
}
