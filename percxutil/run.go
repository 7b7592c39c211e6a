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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/percx"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

// newLogger returns a logger that writes to both w and the file at
// logFile. The returned file must be closed by the caller.
func newLogger(w io.Writer, logFile, level string) (*logrus.Logger, *os.File, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("percx: LogLevel: %v", err)
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("percx: problem creating log file: %v", err)
	}
	logger := logrus.New()
	logger.Out = io.MultiWriter(w, f)
	logger.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	logger.Level = lvl
	return logger, f, nil
}

// Run runs the model with the configuration c and saves the results
// to c.OutputFile. If combined is true, the CO2 and CH4 releases are
// saved as a single total.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Log messages are written to its error stream as well as to c.LogFile.
func Run(CobraCommand *cobra.Command, c *Config, combined bool) error {
	startTime := time.Now()

	if len(c.Forcing.Time) == 0 {
		return fmt.Errorf("percx: there are no time points to simulate")
	}
	outputFile, err := checkOutputFile(c.OutputFile)
	if err != nil {
		return err
	}
	logFile := checkLogFile(c.LogFile, outputFile)
	method, err := percx.ParseMethod(c.Method)
	if err != nil {
		return err
	}

	log, logf, err := newLogger(CobraCommand.OutOrStderr(), logFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer logf.Close()

	log.WithFields(logrus.Fields{
		"version": percx.Version,
		"steps":   len(c.Forcing.Time),
		"method":  method,
		"ACO2":    c.Params.ACO2,
		"ACH4":    c.Params.ACH4,
		"tau":     c.Params.Tau,
		"C_init":  c.Params.CInit,
	}).Info("percx: starting simulation")

	m := percx.Model{
		Params: c.Params,
		Method: method,
		Log:    log,
	}
	r, err := m.Run(context.Background(), c.Forcing.TemperatureAnomaly, c.Forcing.Time)
	if err != nil {
		log.WithError(err).Error("percx: simulation failed")
		return err
	}

	write := writers[strings.ToLower(filepath.Ext(outputFile))]
	if err := write(outputFile, c, resultColumns(c, r, combined)); err != nil {
		return fmt.Errorf("percx: problem writing output file: %v", err)
	}
	total := r.Total()
	log.WithFields(logrus.Fields{
		"output":       outputFile,
		"total":        floats.Sum(total),
		"peak":         floats.Max(total),
		"final_pool":   r.Pool[len(r.Pool)-1],
		"elapsed_time": time.Since(startTime),
	}).Info("percx: simulation complete")
	return nil
}
