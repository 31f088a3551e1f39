package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/tracker"
	"github.com/trezcool/rollcall/storage/database"
)

var (
	isTerminalFunc = term.IsTerminal       // mockable
	migrateFunc    = database.RunMigration // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	svc        *tracker.Service
	validate   *validator.Validate
	translator ut.Translator
	db         *sqlx.DB // set with the postgres backend only
	out        io.Writer
	outFd      int
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  import -file PATH -subject SUBJECT [-class CLASS] - record the roster of a class")
	_, _ = fmt.Fprintln(cli.out, "  mark -class CLASS -subject SUBJECT [-present ID,ID...] - record today's attendance")
	_, _ = fmt.Fprintln(cli.out, "  report -class CLASS -subject SUBJECT [-xlsx PATH] - print (or export) the attendance report")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a database migration command (postgres backend)")
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	importCmd := cli.flagSet("import")
	importFile := importCmd.String("file", "", "The roster spreadsheet (.xlsx, .xls or .csv).")
	importSubject := importCmd.String("subject", "", "The subject attendance is taken for.")
	importClass := importCmd.String("class", "", "The class name. Defaults to the file name without extension.")

	markCmd := cli.flagSet("mark")
	markClass := markCmd.String("class", "", "The class name.")
	markSubject := markCmd.String("subject", "", "The subject.")
	markPresent := markCmd.String("present", "", "Comma separated student IDs of the students present today; the others are absent.")

	reportCmd := cli.flagSet("report")
	reportClass := reportCmd.String("class", "", "The class name.")
	reportSubject := reportCmd.String("subject", "", "The subject.")
	reportXLSX := reportCmd.String("xlsx", "", "Export the report to this .xlsx file instead of printing it.")

	switch args[1] {
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importFile == "" || *importSubject == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importRoster(ctx, *importFile, *importClass, *importSubject)
	case "mark":
		if err := markCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *markClass == "" || *markSubject == "" {
			markCmd.Usage()
			return errHelp
		}
		return cli.mark(ctx, *markClass, *markSubject, splitIDs(*markPresent))
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *reportClass == "" || *reportSubject == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(ctx, *reportClass, *reportSubject, *reportXLSX)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2], args[3:]...)
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = core.CleanString(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
