package expr

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"math"
	"strconv"
)

// parseHex parses #rgb, #rgba, #rrggbb and #rrggbbaa.
func parseHex(text string) (Color, bool) {
	h := text[1:]
	for i := 0; i < len(h); i++ {
		if _, err := strconv.ParseUint(h[i:i+1], 16, 8); err != nil {
			return Color{}, false
		}
	}
	digit := func(s string) float64 {
		v, _ := strconv.ParseUint(s, 16, 8)
		return float64(v)
	}
	c := Color{A: 1, raw: text}
	switch len(h) {
	case 3, 4:
		c.R, c.G, c.B = digit(h[0:1])*17, digit(h[1:2])*17, digit(h[2:3])*17
		if len(h) == 4 {
			c.A = digit(h[3:4]) * 17 / 255
		}
	case 6, 8:
		c.R, c.G, c.B = digit(h[0:2]), digit(h[2:4]), digit(h[4:6])
		if len(h) == 8 {
			c.A = digit(h[6:8]) / 255
		}
	default:
		return Color{}, false
	}
	return c, true
}

// HSL returns hue in degrees, saturation and lightness in [0,1].
func (c Color) HSL() (h, s, l float64) {
	r, g, b := c.R/255, c.G/255, c.B/255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	if max == min {
		return 0, 0, l
	}
	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l
}

// FromHSL creates a color from hue (degrees), saturation and lightness
// (both in [0,1]) and alpha.
func FromHSL(h, s, l, a float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360
	s, l = clamp(s, 0, 1), clamp(l, 0, 1)
	if s == 0 {
		return RGBA(l*255, l*255, l*255, a)
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return RGBA(hue2rgb(p, q, h+1.0/3)*255, hue2rgb(p, q, h)*255, hue2rgb(p, q, h-1.0/3)*255, a)
}

func hue2rgb(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

// Luma returns the relative luminance of a color, gamma-corrected.
func (c Color) Luma() float64 {
	lin := func(v float64) float64 {
		v /= 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// Luminance returns the luminance of a color without gamma correction.
func (c Color) Luminance() float64 {
	return (0.2126*c.R + 0.7152*c.G + 0.0722*c.B) / 255
}

// mix blends two colors; weight is the share of c1 in [0,1].
func mix(c1, c2 Color, weight float64) Color {
	w := weight*2 - 1
	a := c1.A - c2.A
	var w1 float64
	if w*a == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+a)/(1+w*a) + 1) / 2
	}
	w2 := 1 - w1
	return RGBA(c1.R*w1+c2.R*w2, c1.G*w1+c2.G*w2, c1.B*w1+c2.B*w2,
		c1.A*weight+c2.A*(1-weight))
}

var colorNames = map[string][3]uint8{
	"black": {0, 0, 0}, "white": {255, 255, 255}, "red": {255, 0, 0},
	"green": {0, 128, 0}, "blue": {0, 0, 255}, "yellow": {255, 255, 0},
	"cyan": {0, 255, 255}, "aqua": {0, 255, 255}, "magenta": {255, 0, 255},
	"fuchsia": {255, 0, 255}, "gray": {128, 128, 128}, "grey": {128, 128, 128},
	"silver": {192, 192, 192}, "maroon": {128, 0, 0}, "olive": {128, 128, 0},
	"lime": {0, 255, 0}, "teal": {0, 128, 128}, "navy": {0, 0, 128},
	"purple": {128, 0, 128}, "orange": {255, 165, 0}, "pink": {255, 192, 203},
	"brown": {165, 42, 42}, "gold": {255, 215, 0}, "tomato": {255, 99, 71},
	"coral": {255, 127, 80}, "salmon": {250, 128, 114}, "crimson": {220, 20, 60},
	"indigo": {75, 0, 130}, "violet": {238, 130, 238}, "orchid": {218, 112, 214},
	"khaki": {240, 230, 140}, "beige": {245, 245, 220}, "ivory": {255, 255, 240},
	"lavender": {230, 230, 250}, "turquoise": {64, 224, 208}, "tan": {210, 180, 140},
	"chocolate": {210, 105, 30}, "sienna": {160, 82, 45}, "skyblue": {135, 206, 235},
	"steelblue": {70, 130, 180}, "slategray": {112, 128, 144}, "darkgray": {169, 169, 169},
	"lightgray": {211, 211, 211}, "lightgrey": {211, 211, 211}, "darkgrey": {169, 169, 169},
	"whitesmoke": {245, 245, 245}, "gainsboro": {220, 220, 220}, "dimgray": {105, 105, 105},
	"darkblue": {0, 0, 139}, "darkred": {139, 0, 0}, "darkgreen": {0, 100, 0},
	"lightblue": {173, 216, 230}, "lightgreen": {144, 238, 144}, "royalblue": {65, 105, 225},
	"firebrick": {178, 34, 34}, "forestgreen": {34, 139, 34}, "seagreen": {46, 139, 87},
	"hotpink": {255, 105, 180}, "deeppink": {255, 20, 147}, "plum": {221, 160, 221},
	"rebeccapurple": {102, 51, 153}, "midnightblue": {25, 25, 112}, "dodgerblue": {30, 144, 255},
}

func namedColor(name string) (Color, bool) {
	if name == "transparent" {
		return Color{A: 0}, true
	}
	rgb, ok := colorNames[name]
	if !ok {
		return Color{}, false
	}
	return Color{R: float64(rgb[0]), G: float64(rgb[1]), B: float64(rgb[2]), A: 1}, true
}
