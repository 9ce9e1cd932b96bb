package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/config"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer/schemas"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/logging"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/store"
)

func commands(out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&parseCmd{out: out},
		&importCmd{out: out},
		&templateCmd{out: out},
		&schemasCmd{out: out},
	}
}

// env loads configuration, sets up logging on stderr and registers the
// schema directory when one is configured.
func env() (*config.Config, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	if cfg.Import.SchemaDir != "" {
		if _, err := schemas.LoadDir(os.DirFS(cfg.Import.SchemaDir)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newService(cfg *config.Config, upserter importer.Upserter) *importer.Service {
	engine, _ := sheet.ParseEngine(cfg.Import.Engine)
	return importer.NewService(upserter, importer.NewLimiter(1, 0), importer.ServiceOptions{
		MaxFileSize:   cfg.Import.MaxFileSize,
		Timeout:       cfg.Import.Timeout,
		Engine:        engine,
		RejectInvalid: cfg.Import.RejectInvalid,
	})
}

func readRequest(schema, engine string, args []string) (importer.Request, error) {
	if len(args) != 1 {
		return importer.Request{}, fmt.Errorf("expected one file, got %d", len(args))
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return importer.Request{}, err
	}
	req := importer.Request{Schema: schema, Filename: filepath.Base(args[0]), Data: data}
	if engine != "" {
		e, err := sheet.ParseEngine(engine)
		if err != nil {
			return importer.Request{}, err
		}
		req.Engine = e
	}
	return req, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, importer.FormatUserError(err))
	fmt.Fprintln(os.Stderr, "detail:", err)
	return subcommands.ExitFailure
}

// ----------------------------------------------------------------------------
// parse
// ----------------------------------------------------------------------------

type parseCmd struct {
	out    io.Writer
	schema string
	engine string
}

func (*parseCmd) Name() string { return "parse" }
func (*parseCmd) Synopsis() string { return "parse a workbook and print the rows as JSON" }
func (*parseCmd) Usage() string {
	return `importctl parse [-schema <key>] [-engine excelize|unioffice] <file.xlsx>

  Locates the header, maps columns and enriches every row without storing
  anything. Prints the full report, warnings included.
`
}

func (c *parseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schema, "schema", "vessels", "Import type key.")
	f.StringVar(&c.engine, "engine", "", "Workbook reader; defaults to IMPORT_ENGINE.")
}

func (c *parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := env()
	if err != nil {
		return fail(err)
	}
	req, err := readRequest(c.schema, c.engine, f.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	report, err := newService(cfg, nil).Preview(ctx, req)
	if err != nil {
		return fail(err)
	}
	if err := printJSON(c.out, report); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// ----------------------------------------------------------------------------
// import
// ----------------------------------------------------------------------------

type importCmd struct {
	out    io.Writer
	schema string
	engine string
}

func (*importCmd) Name() string { return "import" }
func (*importCmd) Synopsis() string { return "import a workbook into the configured store" }
func (*importCmd) Usage() string {
	return `importctl import [-schema <key>] [-engine excelize|unioffice] <file.xlsx>

  Upserts the valid rows into DATABASE_URL. Without a database the rows go
  to a throwaway in-memory store, which is only useful as a dry run of the
  insert and update counts.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schema, "schema", "vessels", "Import type key.")
	f.StringVar(&c.engine, "engine", "", "Workbook reader; defaults to IMPORT_ENGINE.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := env()
	if err != nil {
		return fail(err)
	}
	req, err := readRequest(c.schema, c.engine, f.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	backend, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	report, err := newService(cfg, backend).Import(ctx, req)
	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(c.out, "import %s: %d rows, %d inserted, %d updated, %d skipped\n",
		report.ImportID, report.Upsert.Total, report.Upsert.Inserted, report.Upsert.Updated, report.Skipped)
	for _, w := range report.Result.Warnings {
		fmt.Fprintf(c.out, "  row %d: %s\n", w.SheetRow, w.Message)
	}
	for _, e := range report.Result.Validation.Errors {
		fmt.Fprintf(c.out, "  %s\n", e)
	}
	return subcommands.ExitSuccess
}

// ----------------------------------------------------------------------------
// template
// ----------------------------------------------------------------------------

type templateCmd struct {
	out    io.Writer
	output string
}

func (*templateCmd) Name() string { return "template" }
func (*templateCmd) Synopsis() string { return "write a blank import workbook for a schema" }
func (*templateCmd) Usage() string {
	return `importctl template [-o <file.xlsx>] <schema>
`
}

func (c *templateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file; defaults to <schema>_template.xlsx.")
}

func (c *templateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	if _, err := env(); err != nil {
		return fail(err)
	}

	key := f.Arg(0)
	def, err := importer.Lookup(key)
	if err != nil {
		return fail(err)
	}

	path := c.output
	if path == "" {
		path = key + "_template.xlsx"
	}
	if err := writeTemplate(path, def.Schema); err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.out, path)
	return subcommands.ExitSuccess
}

func writeTemplate(path string, schema importer.ColumnSchema) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return importer.WriteTemplate(file, schema)
}

// ----------------------------------------------------------------------------
// schemas
// ----------------------------------------------------------------------------

type schemasCmd struct {
	out io.Writer
}

func (*schemasCmd) Name() string { return "schemas" }
func (*schemasCmd) Synopsis() string { return "list the registered import types" }
func (*schemasCmd) Usage() string { return "importctl schemas\n" }
func (*schemasCmd) SetFlags(*flag.FlagSet) {}

func (c *schemasCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := env(); err != nil {
		return fail(err)
	}
	listSchemas(c.out, importer.All())
	return subcommands.ExitSuccess
}

func listSchemas(w io.Writer, defs []importer.Definition) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tCOLUMNS\tREQUIRED")
	for _, def := range defs {
		required := 0
		for _, col := range def.Schema.Columns {
			if col.Required {
				required++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", def.Schema.Key, def.Schema.Label, len(def.Schema.Columns), required)
	}
	tw.Flush()
}
