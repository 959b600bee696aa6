package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/user"
	"github.com/rm-a0/flippit-sub000/storage/database"
	gormrepos "github.com/rm-a0/flippit-sub000/storage/database/gorm"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	if conf.Database.Engine == core.EngineMemory {
		logger.Fatal(color.RedString("admin commands need a relational database (got engine %q)", conf.Database.Engine))
	}

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	sqlDB, err := db.DB()
	errAndDie(err)
	errAndDie(sqlDB.Ping())

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	// start CLI
	cli := commandLine{
		db:     sqlDB,
		engine: conf.Database.Engine,
		usrSvc: user.NewService(gormrepos.NewUserRepository(db), validate),
	}
	err = cli.run(os.Args)
	_ = sqlDB.Close()
	if err != nil {
		if err != errHelp {
			logger.Print(color.RedString("error: %s", err))
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(color.RedString("%v", err))
	}
}
