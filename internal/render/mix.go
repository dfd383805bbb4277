package render

import "github.com/coreman2200/wordclock/internal/palette"

// Mix blends two framebuffers (a,b) into dst using alpha (0..1).
// Channels are linear; no gamma assumed.
func Mix(dst, a, b []palette.Color, alpha float64) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	af := 1.0 - alpha
	n := len(dst)
	for i := 0; i < n; i++ {
		dst[i].R = lerp(a[i].R, b[i].R, af, alpha)
		dst[i].G = lerp(a[i].G, b[i].G, af, alpha)
		dst[i].B = lerp(a[i].B, b[i].B, af, alpha)
		dst[i].W = lerp(a[i].W, b[i].W, af, alpha)
	}
}

func lerp(a, b uint8, af, bf float64) uint8 {
	v := float64(a)*af + float64(b)*bf + 0.5
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
