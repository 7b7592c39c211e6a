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
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Method specifies how the decay kernel convolution is evaluated.
type Method int

const (
	// DirectSum re-sums the contribution of every prior time step at each
	// step. Its cost grows with the square of the series length.
	DirectSum Method = iota

	// Recurrence carries a running decayed sum from one step to the next.
	// Its cost grows linearly with the series length, and its results
	// match DirectSum to within rounding error.
	Recurrence
)

func (m Method) String() string {
	switch m {
	case DirectSum:
		return "direct"
	case Recurrence:
		return "recurrence"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod returns the Method with the given name,
// either "direct" or "recurrence".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "direct", "":
		return DirectSum, nil
	case "recurrence":
		return Recurrence, nil
	default:
		return 0, fmt.Errorf("percx: invalid convolution method %q; valid options are 'direct' and 'recurrence'", s)
	}
}

// convolution returns a function that gives the sum over k <= i of
// dT[k] * exp(-(t[i]-t[k])/tau). The returned function must be called
// with i = 0, 1, 2, ... in order.
func (m Method) convolution(dT, t []float64, tau float64) (func(i int) float64, error) {
	switch m {
	case DirectSum:
		w := make([]float64, len(t))
		return func(i int) float64 {
			for k := 0; k <= i; k++ {
				w[k] = math.Exp(-(t[i] - t[k]) / tau)
			}
			return floats.Dot(dT[:i+1], w[:i+1])
		}, nil
	case Recurrence:
		var s float64
		return func(i int) float64 {
			if i == 0 {
				s = dT[0]
				return s
			}
			s = s*math.Exp(-(t[i]-t[i-1])/tau) + dT[i]
			return s
		}, nil
	default:
		return nil, fmt.Errorf("percx: invalid convolution method %v", m)
	}
}
