package render

import "github.com/coreman2200/wordclock/internal/palette"

// DefaultChan_mA is the current of one channel at full scale (WS2812 ≈ 20).
const DefaultChan_mA = 20.0

// limiterKnee is the fraction of the budget where soft limiting begins.
const limiterKnee = 0.9

// Limit estimates the frame current and scales the whole frame to stay under budgetMA.
// Between the knee and the budget the scale is eased in; above the budget it is hard.
func Limit(buf []palette.Color, budgetMA, chanMA float64) {
	if budgetMA <= 0 {
		return
	}
	if chanMA <= 0 {
		chanMA = DefaultChan_mA
	}
	total := Current(buf, chanMA)
	if total <= 0 {
		return
	}
	ratio := total / budgetMA
	if ratio <= limiterKnee {
		return
	}
	s := budgetMA / total
	if ratio <= 1.0 {
		// map ratio in [knee,1] to scale in [1, budget/total]
		t := (ratio - limiterKnee) / (1.0 - limiterKnee)
		s = 1.0 - t*(1.0-s)
	}
	applyGlobalScale(buf, s)
}

// Current estimates the frame draw in mA.
func Current(buf []palette.Color, chanMA float64) float64 {
	var sum float64
	for _, c := range buf {
		sum += float64(c.R) + float64(c.G) + float64(c.B) + float64(c.W)
	}
	return sum / 255.0 * chanMA
}

func applyGlobalScale(buf []palette.Color, s float64) {
	if s >= 1.0 {
		return
	}
	for i := range buf {
		buf[i].R = uint8(float64(buf[i].R) * s)
		buf[i].G = uint8(float64(buf[i].G) * s)
		buf[i].B = uint8(float64(buf[i].B) * s)
		buf[i].W = uint8(float64(buf[i].W) * s)
	}
}
