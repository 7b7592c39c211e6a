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
	"io/ioutil"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Model calculates the permafrost carbon response for a set of parameters.
// A Model holds no state between calls to Run, so it can be used
// concurrently.
type Model struct {
	Params

	// Method specifies how the kernel convolution is evaluated.
	// The default is DirectSum.
	Method Method

	// Log receives diagnostic messages. If Log is nil, no messages
	// are logged.
	Log logrus.FieldLogger
}

// Result holds the output of a model run. All fields have one element
// per time step.
type Result struct {
	// CO2 and CH4 are the carbon released as each species.
	CO2, CH4 []float64

	// Pool is the size of the carbon pool remaining after each step.
	Pool []float64
}

// Total returns the combined CO2 and CH4 release at each time step.
func (r *Result) Total() []float64 {
	o := make([]float64, len(r.CO2))
	floats.AddTo(o, r.CO2, r.CH4)
	return o
}

var discard = &logrus.Logger{
	Out:       ioutil.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
}

// Run calculates the carbon released at each time point in t
// caused by the temperature anomalies dT. ctx is checked between
// time steps; if it is cancelled, Run returns its error and no result.
//
// Time steps are processed in order, and each one draws down the pool
// left by the previous step. The release is first scaled by the fraction
// of the initial pool that remains, and then, if the two species together
// would release more than what remains, both are scaled back by the same
// factor so that the pool is exactly exhausted.
func (m *Model) Run(ctx context.Context, dT, t []float64) (*Result, error) {
	p := m.Params
	if err := p.validate(len(dT), len(t)); err != nil {
		return nil, err
	}
	log := m.Log
	if log == nil {
		log = discard
	}
	n := len(dT)
	r := &Result{
		CO2:  make([]float64, n),
		CH4:  make([]float64, n),
		Pool: make([]float64, n),
	}
	if p.CInit == 0 || n == 0 {
		// An empty pool can't release anything.
		return r, nil
	}
	conv, err := m.Method.convolution(dT, t, p.Tau)
	if err != nil {
		return nil, err
	}

	pool := p.CInit
	exhausted := false
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := conv(i)
		frac := pool / p.CInit
		co2 := p.ACO2 * s * frac
		ch4 := p.ACH4 * s * frac

		if total := co2 + ch4; total > pool {
			log.WithFields(logrus.Fields{
				"step":   i,
				"time":   t[i],
				"demand": total,
				"pool":   pool,
			}).Debug("percx: release limited by remaining carbon pool")
			f := pool / total
			co2 *= f
			ch4 *= f
		}
		r.CO2[i] = co2
		r.CH4[i] = ch4
		pool = math.Max(pool-(co2+ch4), 0)
		r.Pool[i] = pool

		if pool == 0 && !exhausted {
			exhausted = true
			log.WithFields(logrus.Fields{
				"step": i,
				"time": t[i],
			}).Debug("percx: carbon pool exhausted")
		}
	}

	log.WithFields(logrus.Fields{
		"steps":      n,
		"method":     m.Method,
		"CO2":        floats.Sum(r.CO2),
		"CH4":        floats.Sum(r.CH4),
		"final_pool": pool,
	}).Info("percx: finished permafrost carbon response")
	return r, nil
}
