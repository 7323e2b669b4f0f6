package main

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/export"
	"github.com/thestartupdeveloper10/jamiibudget/internal/handler"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/urfave/cli/v2"
)

const monthLayout = "2006-01"

// appState opens the session lazily so help output never touches storage.
type appState struct {
	in          io.Reader
	out         io.Writer
	sess        *session
	defaultJSON bool
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	a := &appState{in: in, out: out}

	app := a.commandApp()
	app.Flags = append([]cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
		&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "user id, overrides user_id from config"},
	}, app.Flags...)
	app.Commands = append(app.Commands, a.shellCommand())
	app.After = func(c *cli.Context) error {
		if a.sess == nil {
			return nil
		}
		return a.sess.Close()
	}
	return app
}

// commandApp holds the commands shared by the top level and the shell.
func (a *appState) commandApp() *cli.App {
	return &cli.App{
		Name:        "budget",
		Usage:       "record income and expenses and see where the money goes",
		Writer:      a.out,
		HideVersion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text"},
		},
		Commands: a.commands(),
	}
}

func (a *appState) deps(c *cli.Context) (*handler.Dependencies, error) {
	if a.sess == nil {
		s, err := openSession(c.Context, c.String("config"), c.String("user"), a.out)
		if err != nil {
			return nil, err
		}
		a.sess = s
	}
	a.sess.deps.JSON = a.defaultJSON || c.Bool("json")
	return a.sess.deps, nil
}

func kindFlag() cli.Flag {
	return &cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "expense or income", Value: string(models.KindExpense)}
}

func (a *appState) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "home",
			Usage: "show the balance and the latest transactions",
			Action: func(c *cli.Context) error {
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Home(c.Context)
			},
		},
		{
			Name:    "transactions",
			Aliases: []string{"ls"},
			Usage:   "list one month of transactions, or all of them",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "month", Aliases: []string{"m"}, Usage: "month as YYYY-MM, defaults to the current one"},
				&cli.BoolFlag{Name: "all", Usage: "list every transaction, newest first"},
			},
			Action: func(c *cli.Context) error {
				if c.Bool("all") {
					if c.IsSet("month") {
						return fmt.Errorf("--all and --month cannot be combined")
					}
					d, err := a.deps(c)
					if err != nil {
						return err
					}
					return d.AllTransactions(c.Context)
				}
				var month time.Time
				if s := c.String("month"); s != "" {
					var err error
					if month, err = time.Parse(monthLayout, s); err != nil {
						return fmt.Errorf("invalid month %q: want YYYY-MM", s)
					}
				}
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Transactions(c.Context, month)
			},
		},
		{
			Name:  "show",
			Usage: "show one transaction of either kind",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Required: true},
			},
			Action: func(c *cli.Context) error {
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Show(c.Context, c.String("id"))
			},
		},
		{
			Name:  "add",
			Usage: "record a transaction",
			Flags: []cli.Flag{
				kindFlag(),
				&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Required: true},
				&cli.StringFlag{Name: "category", Required: true},
				&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
				&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today"},
			},
			Action: func(c *cli.Context) error {
				kind, err := models.ParseKind(c.String("kind"))
				if err != nil {
					return err
				}
				amount, err := parseAmount(c.String("amount"))
				if err != nil {
					return err
				}
				req := handler.AddRequest{
					Kind:        kind,
					Amount:      amount,
					Category:    c.String("category"),
					Description: c.String("description"),
				}
				if s := c.String("date"); s != "" {
					if req.Date, err = parseDate(s); err != nil {
						return err
					}
				}
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Add(c.Context, req)
			},
		},
		{
			Name:  "update",
			Usage: "change fields of a transaction",
			Flags: []cli.Flag{
				kindFlag(),
				&cli.StringFlag{Name: "id", Required: true},
				&cli.StringFlag{Name: "amount", Aliases: []string{"a"}},
				&cli.StringFlag{Name: "category"},
				&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
				&cli.StringFlag{Name: "date"},
			},
			Action: func(c *cli.Context) error {
				kind, err := models.ParseKind(c.String("kind"))
				if err != nil {
					return err
				}
				patch, err := patchFromFlags(c)
				if err != nil {
					return err
				}
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Update(c.Context, kind, c.String("id"), patch)
			},
		},
		{
			Name:    "delete",
			Aliases: []string{"rm"},
			Usage:   "delete a transaction",
			Flags: []cli.Flag{
				kindFlag(),
				&cli.StringFlag{Name: "id", Required: true},
			},
			Action: func(c *cli.Context) error {
				kind, err := models.ParseKind(c.String("kind"))
				if err != nil {
					return err
				}
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Delete(c.Context, kind, c.String("id"))
			},
		},
		{
			Name:  "categories",
			Usage: "list the suggested categories",
			Flags: []cli.Flag{kindFlag()},
			Action: func(c *cli.Context) error {
				kind, err := models.ParseKind(c.String("kind"))
				if err != nil {
					return err
				}
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Categories(kind)
			},
		},
		{
			Name:  "report",
			Usage: "show category totals and the six-month series, optionally exporting them",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "ref", Usage: "YYYY-MM-DD in the last month of the series, defaults to today"},
				&cli.StringFlag{Name: "export", Aliases: []string{"e"}, Usage: "pdf or xlsx"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "directory for the exported file", Value: "."},
				&cli.BoolFlag{Name: "upload", Usage: "upload the export to the reports container instead of writing a file"},
			},
			Action: func(c *cli.Context) error {
				req := handler.ReportRequest{OutDir: c.String("out"), Upload: c.Bool("upload")}
				var err error
				if s := c.String("ref"); s != "" {
					if req.Ref, err = parseDate(s); err != nil {
						return err
					}
				}
				if s := c.String("export"); s != "" {
					if req.Format, err = export.ParseFormat(s); err != nil {
						return err
					}
				} else if req.Upload {
					return fmt.Errorf("--upload needs --export")
				}
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Report(c.Context, req)
			},
		},
		{
			Name:  "planner",
			Usage: "suggest a 50/30/20 budget from your largest income",
			Action: func(c *cli.Context) error {
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Planner(c.Context)
			},
		},
		{
			Name:  "import",
			Usage: "import transactions from a CSV with Date,Category,Description,Amount columns",
			Flags: []cli.Flag{
				kindFlag(),
				&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "local CSV file"},
				&cli.StringFlag{Name: "blob", Usage: "CSV blob in the uploads container"},
			},
			Action: func(c *cli.Context) error {
				kind, err := models.ParseKind(c.String("kind"))
				if err != nil {
					return err
				}
				if c.IsSet("file") == c.IsSet("blob") {
					return fmt.Errorf("give exactly one of --file or --blob")
				}
				d, err := a.deps(c)
				if err != nil {
					return err
				}
				return d.Import(c.Context, handler.ImportRequest{Kind: kind, Path: c.String("file"), Blob: c.String("blob")})
			},
		},
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if amount.IsNegative() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return amount, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// patchFromFlags sets only the fields given on the command line.
func patchFromFlags(c *cli.Context) (models.TransactionPatch, error) {
	var patch models.TransactionPatch
	if c.IsSet("amount") {
		amount, err := parseAmount(c.String("amount"))
		if err != nil {
			return patch, err
		}
		patch.Amount = &amount
	}
	if c.IsSet("category") {
		category := c.String("category")
		patch.Category = &category
	}
	if c.IsSet("description") {
		description := c.String("description")
		patch.Description = &description
	}
	if c.IsSet("date") {
		date, err := parseDate(c.String("date"))
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	return patch, nil
}
