package main

import (
	"os"

	"github.com/kjk/stockroom/config"
	"github.com/kjk/stockroom/inventory"
	"github.com/kjk/stockroom/log"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Logf("%s\n", err)
		os.Exit(1)
	}
	log.Init(&log.Config{Dir: cfg.LogDir})
	defer log.Close()
	log.Verbose = cfg.Verbose

	if _, err = inventory.Run(cfg, nil); err != nil {
		log.Errorf("%s", err)
		log.Close()
		os.Exit(1)
	}
}
