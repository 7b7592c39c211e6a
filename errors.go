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

import "fmt"

// DomainError is returned when a parameter is outside of the range
// where the response is defined.
type DomainError struct {
	// Param is the name of the offending parameter.
	Param string
	Value float64
	Msg   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("percx: %s (%s=%g)", e.Msg, e.Param, e.Value)
}

// ShapeError is returned when the temperature anomaly and time series
// have different lengths.
type ShapeError struct {
	LenDT, LenT int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("percx: temperature anomaly and time series must be the same length; %d != %d",
		e.LenDT, e.LenT)
}
