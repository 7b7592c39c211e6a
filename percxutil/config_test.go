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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/percx"
)

func TestToFloat64SliceE(t *testing.T) {
	var tests = []struct {
		name string
		in   interface{}
		want []float64
		err  bool
	}{
		{name: "nil", in: nil, want: nil},
		{name: "floats", in: []float64{1, 2.5}, want: []float64{1, 2.5}},
		{name: "toml", in: []interface{}{int64(1), 2.5, int64(-3)}, want: []float64{1, 2.5, -3}},
		{name: "json", in: "[0, 0.5, 1e3]", want: []float64{0, 0.5, 1000}},
		{name: "empty string", in: " ", want: nil},
		{name: "bad json", in: "[1, a]", err: true},
		{name: "bad element", in: []interface{}{"x"}, err: true},
		{name: "bad type", in: 12, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := toFloat64SliceE(test.in)
			if (err != nil) != test.err {
				t.Fatalf("error: %v", err)
			}
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "percx")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	os.Setenv("PERCXDIR", dir)
	defer os.Unsetenv("PERCXDIR")

	v := viper.New()
	v.SetConfigFile("configExample.toml")
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	have, err := LoadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Params: percx.Params{ACO2: 0.1, ACH4: 0.05, Tau: 1, CInit: 100},
		Forcing: Forcing{
			Time:               []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			TemperatureAnomaly: []float64{0.2, 0.4, 0.6, 0.8, 1.0, 1.2, 1.4, 1.6, 1.8, 2.0},
		},
		Method:     "direct",
		OutputFile: dir + "/percx_output.csv",
		LogLevel:   "info",
	}
	if diff := pretty.Diff(have, want); len(diff) > 0 {
		t.Errorf("configuration differs: %v", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	var tests = []struct {
		name string
		set  map[string]interface{}
		msg  string
	}{
		{
			name: "no time",
			set:  map[string]interface{}{},
			msg:  "there are no time points",
		},
		{
			name: "bad time",
			set:  map[string]interface{}{"Forcing.Time": "[0,"},
			msg:  "Forcing.Time",
		},
		{
			name: "bad anomaly",
			set: map[string]interface{}{
				"Forcing.Time":               "[0]",
				"Forcing.TemperatureAnomaly": []interface{}{"warm"},
			},
			msg: "Forcing.TemperatureAnomaly",
		},
		{
			name: "bad method",
			set: map[string]interface{}{
				"Forcing.Time": "[0]",
				"Method":       "spectral",
			},
			msg: "invalid convolution method",
		},
		{
			name: "bad level",
			set: map[string]interface{}{
				"Forcing.Time": "[0]",
				"LogLevel":     "loud",
			},
			msg: "LogLevel",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range test.set {
				v.Set(k, val)
			}
			_, err := LoadConfig(v)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error %q should contain %q", err, test.msg)
			}
		})
	}
}

func TestCheckOutputFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "percx")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	for _, f := range []string{
		"",
		filepath.Join(dir, "out.shp"),
		filepath.Join(dir, "missing", "out.csv"),
	} {
		if _, err := checkOutputFile(f); err == nil {
			t.Errorf("%q: expected an error", f)
		}
	}
	for _, ext := range outputExtensions() {
		f := filepath.Join(dir, "out"+ext)
		have, err := checkOutputFile(f)
		if err != nil {
			t.Errorf("%q: %v", f, err)
		}
		if have != f {
			t.Errorf("have %q, want %q", have, f)
		}
	}
}

func TestCheckLogFile(t *testing.T) {
	if have, want := checkLogFile("", "/tmp/out.nc"), "/tmp/out.log"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
	if have, want := checkLogFile("/var/run.log", "/tmp/out.nc"), "/var/run.log"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}
