package stream

import (
	"encoding/binary"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledcount/util"
)

const numPixels = 500

// Frame represents a frame of RGB pixels to display on an ledrx device.
type Frame struct {
	pixels [numPixels]colorful.Color
}

// NewFrame creates a new Frame instance.
func NewFrame() *Frame {
	f := new(Frame)
	return f
}

// NewGaugeFrame splits the strip into one segment per progress value and
// lights each segment in proportion to its progress. Lit pixels take their
// colour from the gradient by position within the segment; the leading pixel
// of a segment still in motion is brightened by headGain.
func NewGaugeFrame(progress []float64, gradient GradientTable, back colorful.Color, headGain float64) *Frame {
	f := NewFrame()
	for i := range f.pixels {
		f.pixels[i] = back
	}

	if len(progress) == 0 {
		return f
	}

	segment := numPixels / len(progress)
	for s, p := range progress {
		start := s * segment
		lit := int(math.Floor(util.Clamp(p, 0, 1) * float64(segment)))
		for i := 0; i < lit; i++ {
			t := float64(i) / float64(segment)
			f.pixels[start+i] = gradient.GetColor(t, 1.0, 0.05)
		}

		if lit > 0 && lit < segment && headGain > 0 {
			head := &f.pixels[start+lit-1]
			h, c, l := head.Hcl()
			*head = colorful.Hcl(h, c, l+(0.6-l)*headGain)
		}
	}

	return f
}

// MarshalBinary converts a Frame into binary data.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	data = make([]byte, 2, (numPixels*3)+2)
	binary.LittleEndian.PutUint16(data, numPixels)
	for _, p := range f.pixels {
		r, g, b := p.Clamped().RGB255()
		data = append(data, r, g, b)
	}

	return data, nil
}
