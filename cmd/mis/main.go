package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/midbel/cli"
	"github.com/midbel/mis/export"
	"github.com/midbel/mis/formula"
	"github.com/midbel/mis/ledger"
	"github.com/midbel/mis/report"
	"github.com/midbel/mis/style"
	"github.com/midbel/mis/value"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errFail = errors.New("fail")

var (
	summary = "mis computes management reports from accounting data"
	help    = ""
)

const (
	envMode     = "MIS_ENV"
	envDatabase = "MIS_DATABASE_URL"
	envOdooURL  = "ODOO_URL"
	envOdooDB   = "ODOO_DB"
	envOdooUser = "ODOO_USER"
	envOdooPass = "ODOO_PASSWORD"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger := createLogger(os.Getenv(envMode))
	defer logger.Sync()

	var (
		set  = cli.NewFlagSet("mis")
		root = prepare(ctx, logger)
	)
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func createLogger(env string) *zap.Logger {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.TimeKey = "time"
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.CallerKey = ""
		cfg.DisableStacktrace = true
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fail to build logger for %q: %s\n", env, err)
		return zap.NewNop()
	}
	return logger
}

func prepare(ctx context.Context, logger *zap.Logger) *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"eval"}, &cli.Command{
		Name:    "eval",
		Summary: "evaluate an expression",
		Usage:   "eval [-d name=value...] <expr>",
		Handler: &EvalCommand{},
	})
	root.Register([]string{"check"}, &cli.Command{
		Name:    "check",
		Alias:   []string{"validate"},
		Summary: "validate a report definition",
		Usage:   "check <report>",
		Handler: &CheckCommand{},
	})
	root.Register([]string{"compute"}, &cli.Command{
		Name:    "compute",
		Alias:   []string{"run"},
		Summary: "compute a report against a ledger",
		Usage:   "compute [-l ledger.yaml|-x saft.xml|-p dsn|-o url] [-f format] [-w file] <report>",
		Handler: &ComputeCommand{
			ctx:    ctx,
			logger: logger,
		},
	})
	root.Register([]string{"styles"}, &cli.Command{
		Name:    "styles",
		Summary: "print the resolved style of each kpi of a report",
		Usage:   "styles <report>",
		Handler: &StylesCommand{},
	})
	return root
}

type EvalCommand struct {
	Defs []string
}

func (c EvalCommand) Run(args []string) error {
	set := cli.NewFlagSet("eval")
	set.Func("d", "define name=value", func(str string) error {
		if _, _, ok := strings.Cut(str, "="); !ok {
			return fmt.Errorf("%s: expected name=value", str)
		}
		c.Defs = append(c.Defs, str)
		return nil
	})
	if err := set.Parse(args); err != nil {
		return err
	}
	env := formula.Empty()
	for _, d := range c.Defs {
		name, expr, _ := strings.Cut(d, "=")
		env.Define(strings.TrimSpace(name), formula.SafeEval(expr, env))
	}
	res := formula.SafeEval(strings.Join(set.Args(), " "), env)
	if e, ok := res.(value.Error); ok {
		fmt.Fprintln(os.Stdout, e.Error())
		return errFail
	}
	if value.IsNone(res) {
		fmt.Fprintln(os.Stdout, formula.AccountingNone)
	} else {
		fmt.Fprintln(os.Stdout, res.String())
	}
	return nil
}

type CheckCommand struct{}

func (c CheckCommand) Run(args []string) error {
	set := cli.NewFlagSet("check")
	if err := set.Parse(args); err != nil {
		return err
	}
	rpt, err := report.Load(set.Arg(0))
	if err != nil {
		return err
	}
	if err := rpt.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s: %d kpis, %d periods\n", set.Arg(0), len(rpt.KPIs), len(rpt.Periods))
	return nil
}

type StylesCommand struct{}

func (c StylesCommand) Run(args []string) error {
	set := cli.NewFlagSet("styles")
	if err := set.Parse(args); err != nil {
		return err
	}
	rpt, err := report.Load(set.Arg(0))
	if err != nil {
		return err
	}
	if err := rpt.Validate(); err != nil {
		return err
	}
	for _, k := range rpt.KPIs {
		row, detail := rpt.KPIStyles(k)
		fmt.Fprintf(os.Stdout, "%-16s %s\n", k.Name, style.CSS(row, false))
		if k.AutoExpand {
			fmt.Fprintf(os.Stdout, "%-16s %s\n", k.Name+":*", style.CSS(detail, false))
		}
	}
	return nil
}

type ComputeCommand struct {
	Ledger   string
	SAFT     string
	Database string
	Odoo     string
	Format   string
	OutFile  string

	ctx    context.Context
	logger *zap.Logger
}

func (c ComputeCommand) Run(args []string) error {
	set := cli.NewFlagSet("compute")
	set.StringVar(&c.Ledger, "l", "", "read move lines from yaml file")
	set.StringVar(&c.SAFT, "x", "", "read move lines from SAF-T file")
	set.StringVar(&c.Database, "p", "", "query odoo postgres database")
	set.StringVar(&c.Odoo, "o", "", "query odoo through xml-rpc")
	set.StringVar(&c.Format, "f", "", "output format (text, csv, json, html, xlsx)")
	set.StringVar(&c.OutFile, "w", "", "write result to output file")
	if err := set.Parse(args); err != nil {
		return err
	}
	rpt, err := report.Load(set.Arg(0))
	if err != nil {
		return err
	}
	src, closer, err := c.source()
	if err != nil {
		return err
	}
	defer closer()

	engine := report.Engine{
		Source: src,
		Logger: c.logger,
	}
	mx, err := engine.Compute(c.ctx, rpt)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if c.OutFile != "" {
		if filepath.Ext(c.OutFile) == "" {
			c.OutFile += export.Extension(c.Format)
		}
		f, err := os.Create(c.OutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc, err := export.New(w, c.Format, rpt.Notes)
	if err != nil {
		return err
	}
	return enc.Encode(mx.Table())
}

// source selects the ledger from the flags first, then from the
// environment. A nil source is returned when nothing is configured.
func (c ComputeCommand) source() (ledger.Source, func(), error) {
	nothing := func() {}
	if c.Database == "" && c.Ledger == "" && c.SAFT == "" && c.Odoo == "" {
		c.Database = os.Getenv(envDatabase)
		if c.Database == "" {
			c.Odoo = os.Getenv(envOdooURL)
		}
	}
	switch {
	case c.Ledger != "":
		src, err := ledger.LoadFile(c.Ledger)
		return src, nothing, err
	case c.SAFT != "":
		src, err := ledger.LoadSAFT(c.SAFT)
		return src, nothing, err
	case c.Database != "":
		src, err := ledger.Connect(c.ctx, c.Database)
		if err != nil {
			return nil, nothing, err
		}
		return src, src.Close, nil
	case c.Odoo != "":
		src, err := ledger.NewOdoo(c.Odoo, os.Getenv(envOdooDB), os.Getenv(envOdooUser), os.Getenv(envOdooPass), ledger.WithLogger(c.logger))
		if err != nil {
			return nil, nothing, err
		}
		return src, func() { src.Close() }, nil
	default:
		return nil, nothing, nil
	}
}
