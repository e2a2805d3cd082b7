/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"os"
	"strings"

	"github.com/allbin/go-serialsession"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialsession",
	Short: "Open, configure and talk to serial devices",
	Long: `serialsession opens a serial device, repairs its permissions through a
privileged helper when the current user cannot read or write it, applies the
line settings and exposes the device as a byte stream.

Line settings and helper options can come from flags, from a config file
($HOME/.serialsession.yaml), from SERIALSESSION_* environment variables or
from a .env file in the working directory.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialsession.yaml)")

	// Line settings shared by every command that opens a device
	pf.IntP("baud", "b", 115200, "Baud rate")
	pf.Int("data-bits", 8, "Data bits: 5, 6, 7, 8")
	pf.Int("stop-bits", 1, "Stop bits: 1, 2")
	pf.StringP("parity", "p", "none", "Parity: none, odd, even")
	pf.StringP("flow-control", "f", "none", "Flow control: none, hardware, software")
	pf.String("backend", "termios", "Line configurator: termios, bugst, tarm")

	// Permission repair
	pf.StringSlice("escalate-cmd", serial.DefaultEscalationCommand, "Privileged helper that receives the chmod script on stdin")
	pf.Bool("no-escalate", false, "Fail instead of running the privileged helper on permission errors")

	pf.String("log-level", "warn", "Log level: debug, info, warn, error")

	viper.BindPFlags(pf)
}

// initConfig reads in the .env file, config file and ENV variables if set.
func initConfig() {
	// A missing .env is the normal case
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialsession")
	}

	viper.SetEnvPrefix("SERIALSESSION")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		newLogger(os.Stderr).Debug("using config file", "path", viper.ConfigFileUsed())
	}
}
