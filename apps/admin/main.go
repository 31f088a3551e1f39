package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/tracker"
	emailsvc "github.com/trezcool/rollcall/services/email"
	logsvc "github.com/trezcool/rollcall/services/logger"
	"github.com/trezcool/rollcall/storage"
	"github.com/trezcool/rollcall/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	ctx := context.Background()
	conf := core.NewConfig()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	cli := commandLine{
		conf:       conf,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
		outFd:      int(os.Stdout.Fd()),
	}

	// set up storage
	var store attendance.Store
	if conf.Storage.Backend == core.BackendPostgres {
		db, err := database.Open(ctx, conf)
		errAndDie(err)
		defer db.Close()
		cli.db = db
		store = database.NewStore(db)
	} else {
		var closeStore storage.Closer
		var err error
		store, closeStore, err = storage.Open(ctx, conf)
		errAndDie(err)
		defer closeStore()
	}
	cli.svc = tracker.NewService(conf, store, emailsvc.NewConsoleService(conf), svcLogger)

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
