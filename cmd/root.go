package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	              _ _
	  ___  ___ _ __ (_) |_
	 / _ \/ __| '_ \| | __|
	| (_) \__ \ | | | | |_
	 \___/|___/_| |_|_|\__|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "osnit",
	Short: "Terminal client for the OSNIT Shield threat-intelligence backend.",
	Long: LOGO + `osnit polls the OSNIT Shield API, keeps the latest incidents, alerts and
risk scores in memory and lets you slice them by country, state, type and severity.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.osnit.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("api", "", "Backend base URL (overrides api.base_url)")
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://127.0.0.1:8000")
	viper.SetDefault("api.variant", "intelligence")
	viper.SetDefault("api.timeout", "0s")
	viper.SetDefault("api.retry_max", 0)
	viper.SetDefault("poll.interval", "30s")
	viper.SetDefault("poll.extended", false)
	viper.SetDefault("server.listen", "127.0.0.1:7070")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
	viper.SetDefault("border_countries", []string{"pakistan", "china", "bangladesh", "nepal", "bhutan", "myanmar", "sri lanka", "afghanistan"})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".osnit")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("OSNIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".osnit.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Debugf("Could not create config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
