package rt

import (
	"math"
	"unsafe"

	"github.com/fatih/color"
)

// RGB is one 24-bit color channel triple.
type RGB struct {
	R, G, B uint8
}

// mix64 is a fixedpoint avalanche: three rounds of multiply by a spread
// constant with an XOR fold of the high half. Nearby inputs (addresses of
// cells allocated moments apart) land on distant hues.
func mix64(x uint64) uint64 {
	const k = 0x517cc1b727220a95
	x *= k
	x ^= x >> 32
	x *= k
	x ^= x >> 32
	x *= k
	return x
}

// ColorOf derives a deterministic color pair from a 64-bit value: a
// foreground tone and a darker, slightly desaturated background tone for
// contrast. Identical input always yields identical output.
func ColorOf(v uint64) (fg, bg RGB) {
	h := float64(mix64(v)) / float64(math.MaxUint64) * 360.0
	const s, l = 50.0, 70.0
	fg = hslToRGB(h, s, l)
	bg = hslToRGB(h, s*0.8, l*0.5)
	return fg, bg
}

// hslToRGB is the standard sector-based piecewise conversion. h in degrees,
// s and l in percent.
func hslToRGB(h, s, l float64) RGB {
	h /= 360.0
	s /= 100.0
	l /= 100.0

	c := (1.0 - math.Abs(2.0*l-1.0)) * s
	x := c * (1.0 - math.Abs(math.Mod(h*6.0, 2.0)-1.0))
	m := l - c/2.0

	var r, g, b float64
	switch int(h * 6.0) {
	case 0, 6:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB{
		R: uint8((r + m) * 255.0),
		G: uint8((g + m) * 255.0),
		B: uint8((b + m) * 255.0),
	}
}

// Beacon is a named 64-bit value whose rendering color is determined by the
// value. Tracef uses beacons to make distinct loaded modules and distinct
// goroutines visually distinguishable at a glance.
type Beacon struct {
	Name string
	Val  uint64

	fg, bg RGB
}

// NewBeacon builds a beacon for an arbitrary value.
func NewBeacon(name string, v uint64) Beacon {
	fg, bg := ColorOf(v)
	return Beacon{Name: name, Val: v, fg: fg, bg: bg}
}

// BeaconFromPtr builds a beacon from a pointer's address.
func BeaconFromPtr[T any](name string, p *T) Beacon {
	return NewBeacon(name, uint64(uintptr(unsafe.Pointer(p))))
}

func (b Beacon) String() string {
	c := color.RGB(int(b.fg.R), int(b.fg.G), int(b.fg.B)).
		AddBgRGB(int(b.bg.R), int(b.bg.G), int(b.bg.B))
	return c.Sprintf("%s#%x", b.Name, b.Val)
}
