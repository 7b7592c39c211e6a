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

package percxutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/percx"
	"github.com/spf13/cast"
)

// Config holds the information needed to run a simulation.
type Config struct {
	// Params are the physical parameters of the response.
	Params percx.Params

	// Forcing is the temperature anomaly time series.
	Forcing Forcing

	// Method is the kernel convolution method, either "direct" or "recurrence".
	Method string

	// OutputFile is the path to the desired output file location. The file
	// format is determined by its extension: .csv, .nc, or .xlsx.
	OutputFile string

	// LogFile is the path to the desired logfile location. If LogFile is left
	// blank, the logfile will be saved in the same location as the OutputFile.
	LogFile string

	// LogLevel is the minimum level of messages to log.
	LogLevel string
}

// Forcing holds a temperature anomaly time series.
type Forcing struct {
	// Time holds the time of each point, in the same units as Params.Tau.
	Time []float64

	// TemperatureAnomaly holds the anomaly relative to baseline at each
	// point in Time.
	TemperatureAnomaly []float64
}

// LoadConfig unmarshals a viper configuration. It does not check the
// output or log file locations; use checkOutputFile and checkLogFile
// for that.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		Params: percx.Params{
			ACO2:  cfg.GetFloat64("Params.ACO2"),
			ACH4:  cfg.GetFloat64("Params.ACH4"),
			Tau:   cfg.GetFloat64("Params.Tau"),
			CInit: cfg.GetFloat64("Params.CInit"),
		},
		Method:     os.ExpandEnv(cfg.GetString("Method")),
		OutputFile: os.ExpandEnv(cfg.GetString("OutputFile")),
		LogFile:    os.ExpandEnv(cfg.GetString("LogFile")),
		LogLevel:   os.ExpandEnv(cfg.GetString("LogLevel")),
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	var err error
	c.Forcing.Time, err = toFloat64SliceE(cfg.Get("Forcing.Time"))
	if err != nil {
		return nil, fmt.Errorf("percx: Forcing.Time: %v", err)
	}
	c.Forcing.TemperatureAnomaly, err = toFloat64SliceE(cfg.Get("Forcing.TemperatureAnomaly"))
	if err != nil {
		return nil, fmt.Errorf("percx: Forcing.TemperatureAnomaly: %v", err)
	}
	if len(c.Forcing.Time) == 0 {
		return nil, fmt.Errorf("percx: there are no time points specified. Please fill in " +
			"the Forcing.Time configuration and try again")
	}
	if _, err = percx.ParseMethod(c.Method); err != nil {
		return nil, err
	}
	if _, err = logrus.ParseLevel(c.LogLevel); err != nil {
		return nil, fmt.Errorf("percx: LogLevel: %v", err)
	}
	return c, nil
}

// toFloat64SliceE converts a configuration value into a float slice.
// Values from configuration files arrive as []interface{}, and values
// from command-line arguments arrive as JSON strings.
func toFloat64SliceE(i interface{}) ([]float64, error) {
	switch v := i.(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for j, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, fmt.Errorf("element %d: %v", j, err)
			}
			o[j] = f
		}
		return o, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for float array: %#v", i)
	}
}

// checkOutputFile makes sure that the output file is specified, its
// directory exists, and it has a supported extension.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`percx: you need to specify an output file configuration variable (for example: OutputFile="output.csv")`)
	}
	f = os.ExpandEnv(f)
	if _, ok := writers[strings.ToLower(filepath.Ext(f))]; !ok {
		return f, fmt.Errorf("percx: the OutputFile extension must be one of %s, but the file is `%s`",
			strings.Join(outputExtensions(), ", "), f)
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("percx: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}
