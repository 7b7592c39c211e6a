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

// Package percx calculates the release of carbon as CO2 and CH4 from a
// finite permafrost carbon pool in response to a temperature anomaly time
// series.
//
// Release at each time step is the convolution of all prior temperature
// anomalies with an exponential decay kernel, attenuated by the fraction of
// the pool that remains and limited so that the two species together never
// release more carbon than the pool holds.
package percx

import "context"

// Version gives the version number.
const Version = "1.0.0"

// Params holds the physical parameters of the permafrost carbon response.
type Params struct {
	// ACO2 and ACH4 are the release amplitudes for CO2 and CH4, in units
	// of carbon mass per unit temperature anomaly per unit time.
	ACO2, ACH4 float64

	// Tau is the decay timescale of the response kernel, in the same
	// units as the time series. It must not be zero.
	Tau float64

	// CInit is the initial size of the carbon pool, in carbon mass units.
	// It must not be negative.
	CInit float64
}

// SpeciesResponse returns the carbon released as CO2 and CH4 at each time
// point in t caused by the temperature anomalies dT. dT and t must have the
// same length and t should not decrease.
func SpeciesResponse(dT, t []float64, p Params) (co2, ch4 []float64, err error) {
	m := Model{Params: p}
	r, err := m.Run(context.Background(), dT, t)
	if err != nil {
		return nil, nil, err
	}
	return r.CO2, r.CH4, nil
}

// CombinedResponse returns the total carbon released (CO2 plus CH4) at each
// time point in t caused by the temperature anomalies dT.
func CombinedResponse(dT, t []float64, p Params) ([]float64, error) {
	m := Model{Params: p}
	r, err := m.Run(context.Background(), dT, t)
	if err != nil {
		return nil, err
	}
	return r.Total(), nil
}

// validate checks p against series of lengths nT and nTime.
func (p Params) validate(nT, nTime int) error {
	if p.Tau == 0 {
		return &DomainError{Param: "tau", Value: p.Tau, Msg: "tau must be non-zero"}
	}
	if p.CInit < 0 {
		return &DomainError{Param: "C_init", Value: p.CInit, Msg: "C_init must be non-negative"}
	}
	if nT != nTime {
		return &ShapeError{LenDT: nT, LenT: nTime}
	}
	return nil
}
