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
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/percx"
	"github.com/tealeg/xlsx"
)

// column is one output variable.
type column struct {
	name        string
	description string
	units       string
	data        []float64
}

// resultColumns returns the output variables for result r. If combined is
// true, the species are summed into a single total.
func resultColumns(c *Config, r *percx.Result, combined bool) []column {
	cols := []column{
		{name: "time", description: "Time", units: "time", data: c.Forcing.Time},
		{name: "dT", description: "Temperature anomaly relative to baseline", units: "temperature", data: c.Forcing.TemperatureAnomaly},
	}
	if combined {
		cols = append(cols, column{name: "total", description: "Carbon released as CO2 and CH4", units: "carbon mass", data: r.Total()})
	} else {
		cols = append(cols,
			column{name: "CO2", description: "Carbon released as CO2", units: "carbon mass", data: r.CO2},
			column{name: "CH4", description: "Carbon released as CH4", units: "carbon mass", data: r.CH4},
		)
	}
	return append(cols, column{name: "pool", description: "Carbon pool remaining after the time step", units: "carbon mass", data: r.Pool})
}

// writers holds the output writer for each supported file extension.
var writers = map[string]func(path string, c *Config, cols []column) error{
	".csv":  writeCSV,
	".nc":   writeNetCDF,
	".xlsx": writeXLSX,
}

func outputExtensions() []string {
	o := make([]string, 0, len(writers))
	for ext := range writers {
		o = append(o, ext)
	}
	sort.Strings(o)
	return o
}

// writeCSV writes one row per time step, after a header row.
func writeCSV(path string, _ *Config, cols []column) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	row := make([]string, len(cols))
	for j, col := range cols {
		row[j] = col.name
	}
	if err := w.Write(row); err != nil {
		f.Close()
		return err
	}
	for i := range cols[0].data {
		for j, col := range cols {
			row[j] = strconv.FormatFloat(col.data[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeNetCDF writes the columns as double variables along a single
// time dimension, with the model parameters as global attributes.
func writeNetCDF(path string, c *Config, cols []column) error {
	h := cdf.NewHeader([]string{"time"}, []int{len(cols[0].data)})
	h.AddAttribute("", "comment", "percx permafrost carbon response")
	h.AddAttribute("", "ACO2", []float64{c.Params.ACO2})
	h.AddAttribute("", "ACH4", []float64{c.Params.ACH4})
	h.AddAttribute("", "tau", []float64{c.Params.Tau})
	h.AddAttribute("", "C_init", []float64{c.Params.CInit})
	h.AddAttribute("", "method", c.Method)
	h.AddAttribute("", "version", percx.Version)
	for _, col := range cols {
		h.AddVariable(col.name, []string{"time"}, []float64{0})
		h.AddAttribute(col.name, "description", col.description)
		h.AddAttribute(col.name, "units", col.units)
	}
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		return err
	}
	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		ff.Close()
		return err
	}
	for _, col := range cols {
		end := f.Header.Lengths(col.name)
		start := make([]int, len(end))
		w := f.Writer(col.name, start, end)
		if _, err := w.Write(col.data); err != nil {
			ff.Close()
			return fmt.Errorf("writing variable %s to netcdf file: %v", col.name, err)
		}
	}
	return ff.Close()
}

// writeXLSX writes the columns to a single worksheet.
func writeXLSX(path string, _ *Config, cols []column) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("percx")
	if err != nil {
		return err
	}
	row := sheet.AddRow()
	for _, col := range cols {
		row.AddCell().SetString(col.name)
	}
	for i := range cols[0].data {
		row = sheet.AddRow()
		for _, col := range cols {
			row.AddCell().SetFloat(col.data[i])
		}
	}
	return file.Save(path)
}
