package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/router"
	"github.com/predictinteractive/predict-server/server"
	"github.com/spf13/viper"
)

// Ver and Rev are set at build time using:
//
//	go build -ldflags "-X main.Ver=`git describe --tags` -X main.Rev=`git rev-parse --short HEAD`"
var (
	Ver string
	Rev string
)

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig(viper.New(), configFileName)
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	if err := serve(cfg); err != nil {
		glog.Exitf("predict-server failed: %v", err)
	}
}

const configFileName = "pbs"

func loadConfig(v *viper.Viper, filename string) (*config.Configuration, error) {
	config.SetupViper(v, filename)

	bidderInfos, err := config.LoadBidderInfoFromDisk(v.GetString("bidder_info_dir"))
	if err != nil {
		return nil, err
	}
	return config.New(v, bidderInfos)
}

func serve(cfg *config.Configuration) error {
	r, err := router.New(cfg, Ver, Rev)
	if err != nil {
		return err
	}

	corsRouter := router.SupportCORS(r)
	server.Listen(cfg, router.NoCache{Handler: corsRouter}, router.Admin(Ver, Rev), r.MetricsEngine)
	return nil
}
