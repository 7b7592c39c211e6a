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

package percx

import (
	"context"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/floats"
)

func TestMethodsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for c := 0; c < 100; c++ {
		dT, tm, p := randomCase(rng, 1+rng.Intn(300))
		direct := Model{Params: p, Method: DirectSum}
		rec := Model{Params: p, Method: Recurrence}
		rd, err := direct.Run(context.Background(), dT, tm)
		if err != nil {
			t.Fatal(err)
		}
		rr, err := rec.Run(context.Background(), dT, tm)
		if err != nil {
			t.Fatal(err)
		}
		for i := range dT {
			if !floats.EqualWithinAbsOrRel(rd.CO2[i], rr.CO2[i], 1e-12, tol) ||
				!floats.EqualWithinAbsOrRel(rd.CH4[i], rr.CH4[i], 1e-12, tol) {
				t.Fatalf("case %d step %d: direct (%g, %g) != recurrence (%g, %g)",
					c, i, rd.CO2[i], rd.CH4[i], rr.CO2[i], rr.CH4[i])
			}
		}
	}
}

func TestConvolution(t *testing.T) {
	dT := []float64{2, 0, 1}
	tm := []float64{0, 1, 3}
	tau := 2.
	// exp(-1/2), exp(-3/2), exp(-2/2)
	want := []float64{2, 2 * 0.6065306597126334, 2*0.22313016014842982 + 1}
	for _, m := range []Method{DirectSum, Recurrence} {
		t.Run(m.String(), func(t *testing.T) {
			conv, err := m.convolution(dT, tm, tau)
			if err != nil {
				t.Fatal(err)
			}
			for i, w := range want {
				if have := conv(i); !floats.EqualWithinAbsOrRel(have, w, tol, tol) {
					t.Errorf("step %d: have %g, want %g", i, have, w)
				}
			}
		})
	}
	if _, err := Method(7).convolution(dT, tm, tau); err == nil {
		t.Error("expected an error for an invalid method")
	}
}

func TestParseMethod(t *testing.T) {
	var tests = []struct {
		in   string
		want Method
		err  bool
	}{
		{in: "direct", want: DirectSum},
		{in: "", want: DirectSum},
		{in: "recurrence", want: Recurrence},
		{in: "fft", err: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			m, err := ParseMethod(test.in)
			if (err != nil) != test.err {
				t.Fatalf("error: %v", err)
			}
			if !test.err && m != test.want {
				t.Errorf("have %v, want %v", m, test.want)
			}
		})
	}
	if s := Method(9).String(); s != "Method(9)" {
		t.Errorf("String = %q", s)
	}
}

func TestLog(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.Level = logrus.DebugLevel
	m := Model{
		Params: Params{ACO2: 30, ACH4: 10, Tau: 1, CInit: 100},
		Method: Recurrence,
		Log:    logger,
	}
	if _, err := m.Run(context.Background(), []float64{1, 5, 1}, []float64{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	var capped, info bool
	for _, e := range hook.Entries {
		switch e.Message {
		case "percx: release limited by remaining carbon pool":
			if step := e.Data["step"]; !capped && step != 1 {
				t.Errorf("cap first logged at step %v, want 1", step)
			}
			capped = true
		case "percx: finished permafrost carbon response":
			info = true
			if e.Data["method"] != Recurrence {
				t.Errorf("method = %v", e.Data["method"])
			}
		}
	}
	if !capped {
		t.Error("joint cap was not logged")
	}
	if !info {
		t.Error("summary was not logged")
	}
}
