package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/parent"
	backendsvc "github.com/JCBT04/Capstone/services/backend"
	dummybackend "github.com/JCBT04/Capstone/services/backend/dummy"
	logsvc "github.com/JCBT04/Capstone/services/logger"
	"github.com/JCBT04/Capstone/storage/database"
	"github.com/JCBT04/Capstone/storage/kvstore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	parent.InitValidators(validate, translator)

	var dir parent.Directory
	if conf.Backend.BaseURL == "" {
		dir = dummybackend.NewService()
	} else {
		dir = backendsvc.NewClient(conf, appLogger)
	}

	// start CLI
	cli := commandLine{
		db:  db,
		svc: parent.NewService(dir, kvstore.NewStore(db, conf), appLogger, validate),
	}
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

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
