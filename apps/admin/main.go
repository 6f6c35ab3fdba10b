package main

import (
	"log"
	"os"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/progress"
	"github.com/finquest/finquest/storage/database"
	sqlxrepos "github.com/finquest/finquest/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	errAndDie(database.CreateIfNotExist(core.Conf))
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db))

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(db),
		progressSvc: progress.NewService(
			database.TxDB{DB: db},
			sqlxrepos.NewProgressRepository(db),
			sqlxrepos.NewProfileRepository(db),
			catalogSvc,
		),
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
