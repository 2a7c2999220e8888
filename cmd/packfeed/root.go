package main

import (
	"os"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/packfeed/packfeed/pkg/client"
)

var v *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "packfeed",
	Short: "query OData package feeds",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

//nolint:gochecknoinit
func init() {
	registerConfig()
	rootCmd.AddCommand(searchCmd, countCmd, getCmd)
}

func registerString(flags *pflag.FlagSet, name, value, usage string) {
	flags.String(name, value, usage)
	_ = v.BindPFlag(name, flags.Lookup(name))
	v.SetDefault(name, value)
}

func registerInt(flags *pflag.FlagSet, name string, value int, usage string) {
	flags.Int(name, value, usage)
	_ = v.BindPFlag(name, flags.Lookup(name))
	v.SetDefault(name, value)
}

func registerConfig() {
	v = viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetEnvPrefix("PACKFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	registerString(flags, "config-file", "", "location of config file")
	registerString(flags, "feed", "", "service root URL of the feed")
	registerString(flags, "api-key", "", "feed API key")
	registerString(flags, "username", "", "basic auth username")
	registerString(flags, "password", "", "basic auth password")
	registerInt(flags, "timeout", 30, "request timeout in seconds")
	registerInt(flags, "max-retries", 3, "transport retries for connection failures")
	registerString(flags, "log-level", "info", "logging level [trace, debug, info, warn, error]")
}

func initLogging() error {
	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	log.SetLevel(level)
	return nil
}

// loadConfigFile merges an optional yaml config file into viper under
// the same keys the flags use.
func loadConfigFile() error {
	path := v.GetString("config-file")
	if path == "" {
		return nil
	}
	bs, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "error reading configuration file")
	}
	var configMap map[string]interface{}
	if err := yaml.Unmarshal(bs, &configMap); err != nil {
		return errors.Wrap(err, "error unmarshal yaml configuration file")
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return errors.Wrap(err, "error merge configuration to viper")
	}
	return nil
}

// openFeed builds the feed client from flags, environment, and the
// optional config file.
func openFeed() (*client.Client, error) {
	if err := loadConfigFile(); err != nil {
		return nil, err
	}
	conf := client.Config{
		URL:        v.GetString("feed"),
		Username:   v.GetString("username"),
		Password:   v.GetString("password"),
		APIKey:     v.GetString("api-key"),
		Timeout:    time.Duration(v.GetInt("timeout")) * time.Second,
		MaxRetries: v.GetInt("max-retries"),
	}
	return client.Open("default", conf)
}
