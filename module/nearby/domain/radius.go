package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type RadiusBand int

const (
	Radius1Km RadiusBand = iota + 1
	Radius3Km
	Radius5Km
	Radius7Km
)

var radiusBands = []RadiusBand{Radius1Km, Radius3Km, Radius5Km, Radius7Km}

var bandMeters = map[RadiusBand]float64{
	Radius1Km: 1000,
	Radius3Km: 3000,
	Radius5Km: 5000,
	Radius7Km: 7000,
}

// RadiusBands returns every band in ascending order.
func RadiusBands() []RadiusBand {
	return append([]RadiusBand(nil), radiusBands...)
}

func MaxRadiusBand() RadiusBand {
	return radiusBands[len(radiusBands)-1]
}

func (b RadiusBand) Valid() bool {
	_, ok := bandMeters[b]
	return ok
}

func (b RadiusBand) Meters() float64 {
	return bandMeters[b]
}

func (b RadiusBand) Label() string {
	if !b.Valid() {
		return ""
	}
	return fmt.Sprintf("%d km", int(b.Meters())/1000)
}

func (b RadiusBand) String() string {
	return b.Label()
}

// BandFor returns the smallest band whose distance covers meters.
func BandFor(meters float64) (RadiusBand, bool) {
	for _, b := range radiusBands {
		if meters <= b.Meters() {
			return b, true
		}
	}
	return 0, false
}

// ParseRadiusBand accepts a label ("3 km", "3km") or a distance in meters ("3000", "3000m").
func ParseRadiusBand(s string) (RadiusBand, error) {
	v := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	scale := 1.0
	switch {
	case strings.HasSuffix(v, "km"):
		v = strings.TrimSuffix(v, "km")
		scale = 1000
	case strings.HasSuffix(v, "m"):
		v = strings.TrimSuffix(v, "m")
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRadius, s)
	}
	meters := n * scale
	for _, b := range radiusBands {
		if b.Meters() == meters {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRadius, s)
}

func (b RadiusBand) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, int(b))
	}
	return []byte(b.Label()), nil
}

func (b *RadiusBand) UnmarshalText(text []byte) error {
	parsed, err := ParseRadiusBand(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
