package main

import (
	"github.com/lexigo/deepl-go/internal/buildinfo"
	"github.com/lexigo/deepl-go/internal/cli"
	"github.com/lexigo/deepl-go/internal/logging"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	cli.Execute()
}
