/*
Copyright © 2017 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package percxutil provides a command-line interface for the
// permafrost carbon response model.
package percxutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/gobra"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/percx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to percx.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Params.ACO2",
			usage: `
              Params.ACO2 is the amplitude of CO2 release, in units of
              carbon mass per unit temperature anomaly per unit time.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "Params.ACH4",
			usage: `
              Params.ACH4 is the amplitude of CH4 release, in units of
              carbon mass per unit temperature anomaly per unit time.`,
			defaultVal: 0.05,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "Params.Tau",
			usage: `
              Params.Tau is the decay timescale of the response to a
              temperature anomaly, in the same units as Forcing.Time.
              It must not be zero.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "Params.CInit",
			usage: `
              Params.CInit is the initial size of the permafrost carbon
              pool, in carbon mass units. It must not be negative.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "Forcing.Time",
			usage: `
              Forcing.Time is the time of each point in the forcing series,
              formatted as an array, for example [0,1,2]. Time must not decrease.`,
			defaultVal: []float64{},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "Forcing.TemperatureAnomaly",
			usage: `
              Forcing.TemperatureAnomaly is the temperature anomaly relative
              to baseline at each point in Forcing.Time, formatted as an
              array, for example [1,1,1].`,
			defaultVal: []float64{},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "Method",
			usage: `
              Method specifies how the response kernel is evaluated. 'direct'
              re-sums all prior time steps at each step; 'recurrence' carries
              a running sum and is faster for long series.`,
			shorthand:  "m",
			defaultVal: "direct",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location. The
              format is chosen by the file extension: .csv, .nc (NetCDF), or
              .xlsx. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages: debug, info,
              warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), configCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PERCX")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case []float64:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := strings.TrimSpace(b.String())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	runCmd.AddCommand(speciesCmd)
	runCmd.AddCommand(combinedCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("percx: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "percx",
	Short: "A permafrost carbon response model.",
	Long: `percx calculates the release of carbon as CO2 and CH4 from a finite
permafrost carbon pool in response to a temperature anomaly time series.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PERCX_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of percx.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("percx v%s\n", percx.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run runs a permafrost carbon simulation. Use the subcommands specified
below to choose whether to save each species separately or their total.`,
	DisableAutoGenTag: true,
}

// speciesCmd is a command that runs a simulation and saves the
// CO2 and CH4 releases separately.
var speciesCmd = &cobra.Command{
	Use:   "species",
	Short: "Calculate CO2 and CH4 releases.",
	Long: `species calculates the carbon released as CO2 and as CH4 at each time
step, and the carbon pool remaining after each step.

	Output variables:
	time: Time of each step
	dT: Temperature anomaly
	CO2: Carbon released as CO2
	CH4: Carbon released as CH4
	pool: Carbon pool remaining`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, c, false)
	},
	DisableAutoGenTag: true,
}

// combinedCmd is a command that runs a simulation and saves the
// total carbon release.
var combinedCmd = &cobra.Command{
	Use:   "combined",
	Short: "Calculate total carbon release.",
	Long: `combined calculates the total carbon released as CO2 plus CH4 at each
time step, and the carbon pool remaining after each step.

	Output variables:
	time: Time of each step
	dT: Temperature anomaly
	total: Carbon released as CO2 and CH4
	pool: Carbon pool remaining`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, c, true)
	},
	DisableAutoGenTag: true,
}

// configCmd is a command that prints the resolved configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration.",
	Long: `config prints the configuration that results from combining the
configuration file, command-line arguments, and environment variables,
in TOML format. The output can be used as a configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(c)
	},
	DisableAutoGenTag: true,
}

// StartWebServer starts a web page for configuring and running
// the model.
func StartWebServer() {
	setConfig() // Ignore any errors for now.

	http.HandleFunc("/setConfig", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		configFile := r.Form["config"][0]
		Root.Flags().Set("config", configFile)
		err := setConfig()
		if err != nil {
			http.Error(w, err.Error(), 204)
			return
		}
		config := make(map[string]interface{})
		for _, option := range options {
			config[option.name] = Cfg.Get(option.name)
		}
		e := json.NewEncoder(w)
		if err := e.Encode(config); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	})

	logrus.Info("Loading front-end...")

	for _, cmd := range []*cobra.Command{Root, versionCmd, runCmd, speciesCmd,
		combinedCmd, configCmd} {
		cmd.SilenceUsage = true // We don't want the usage messages in the GUI.
	}

	const address = "localhost:7272"
	output := template.Must(template.New("").Parse(strings.Replace(webTemplate, "{{address}}", address, -1)))
	server := gobra.Server{Root: Root, ServerAddress: address, AllowCORS: false, HTML: output}
	logrus.Info("Server starting...")
	open.Run("http://" + address)
	fmt.Println("If not opened automatically, please visit http://" + address)
	server.Start()
}

const webTemplate = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>percx</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
		.red-border{ border: 1px solid #c35; }
		.green-border{ border: 1px solid #3c5; }
	</style>
</head>
<body>
<div class="container">
	<h1>percx</h1>
	<p>Configure the permafrost carbon simulation below.</p>
	<div>
		{{.}}
	</div>
</div>

<script>
let allFlags = [...document.querySelectorAll('[data-name]')];
let configInput = allFlags.filter(x => x.dataset.name == "config")[0].children[0];
configInput.addEventListener("input", e => {
	fetch("http://{{address}}/setConfig?config="+configInput.value)
		.then( res => {
			if (res.status !== 200) {
				configInput.classList.add("red-border");
				return;
			}
			res.json().then( data => {
				configInput.classList.remove("red-border");
				for (let key in data)
					for (let f of allFlags)
						if (f.dataset.name == key) {
							let input = f.children[0];
							input.value = JSON.stringify(data[key]).replace(/^"+|"+$/g,'');
							input.classList.add("green-border");
						}
			})
		})
		.catch( err => console.log("Error fetching /setConfig", err))
})
</script>
</body>
</html>`
