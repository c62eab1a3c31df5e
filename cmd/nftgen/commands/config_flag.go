package commands

import (
	"io"

	"github.com/spf13/pflag"
)

// ConfigFlag names the persistent flag selecting the settings file.
const ConfigFlag = "config"

// ConfigPath returns the value of the config flag in args. The settings are
// needed to build the application, so the flag is read ahead of the command
// line proper. Every other flag and argument is ignored here.
func ConfigPath(args []string) string {
	fs := pflag.NewFlagSet("nftgen", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.StringP(ConfigFlag, "c", "", "")
	_ = fs.Parse(args)
	return *path
}
