package config

import (
	"math"
	"strconv"
	"strings"

	"dasa.cc/primeview/geom"
)

// ParseScale returns the scale in s. Anything but a positive finite number
// is rejected so callers fall back to the default view.
func ParseScale(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(f > 0) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseCenter returns the world point in s, written "x,y" or "x y".
func ParseCenter(s string) (geom.Point, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 2 {
		return geom.ZP, false
	}
	var xy [2]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return geom.ZP, false
		}
		xy[i] = v
	}
	return geom.Pt(xy[0], xy[1]), true
}
