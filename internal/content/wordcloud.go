package content

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyCorpus means there were no words left to draw.
var ErrEmptyCorpus = errors.New("no words to build a word cloud from")

const (
	CloudWidth   = 800
	CloudHeight  = 400
	cloudMinFont = 10
	cloudMaxFont = 120
	cloudWords   = 200
	cloudPadding = 2
	cloudStep    = 2
)

var cloudPalette = []color.RGBA{
	{68, 1, 84, 255},
	{72, 40, 120, 255},
	{62, 74, 137, 255},
	{49, 104, 142, 255},
	{38, 130, 142, 255},
	{31, 158, 137, 255},
	{53, 183, 121, 255},
	{109, 205, 89, 255},
	{180, 222, 44, 255},
}

var (
	cloudFontOnce sync.Once
	cloudFont     *opentype.Font
	cloudFontErr  error
)

func parseCloudFont() (*opentype.Font, error) {
	cloudFontOnce.Do(func() {
		cloudFont, cloudFontErr = opentype.Parse(goregular.TTF)
	})
	return cloudFont, cloudFontErr
}

// CloudFrequencies counts words of the cleaned messages that are not in the
// exclusion set, most frequent first.
func CloudFrequencies(cleaned []string, exclude map[string]struct{}) []Entry[string] {
	counter := NewCounter[string]()
	for _, m := range cleaned {
		for _, w := range strings.Fields(m) {
			if _, skip := exclude[w]; skip || len(w) < 2 {
				continue
			}
			counter.Add(w)
		}
	}
	return counter.MostCommon(cloudWords)
}

// RenderWordCloud draws the words on a white canvas and returns PNG bytes.
// Larger counts get larger type; each word is placed on a spiral out from the
// center at the first free spot, shrinking until it fits or drops below the
// minimum size. seed fixes colors.
func RenderWordCloud(freqs []Entry[string], seed int64) ([]byte, error) {
	if len(freqs) == 0 {
		return nil, ErrEmptyCorpus
	}
	f, err := parseCloudFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, CloudWidth, CloudHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	faces := make(map[int]font.Face)
	defer func() {
		for _, fc := range faces {
			fc.Close()
		}
	}()
	face := func(size int) (font.Face, error) {
		if fc, ok := faces[size]; ok {
			return fc, nil
		}
		fc, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, err
		}
		faces[size] = fc
		return fc, nil
	}

	rng := rand.New(rand.NewSource(seed))
	top := float64(freqs[0].Count)
	var placed []image.Rectangle
	drawn := 0

	for _, e := range freqs {
		size := int(math.Round(cloudMaxFont * (0.5*float64(e.Count)/top + 0.5)))
		for ; size >= cloudMinFont; size -= cloudStep {
			fc, err := face(size)
			if err != nil {
				return nil, fmt.Errorf("font face %d: %w", size, err)
			}
			m := fc.Metrics()
			w := font.MeasureString(fc, e.Key).Ceil()
			h := (m.Ascent + m.Descent).Ceil()
			if w > CloudWidth || h > CloudHeight {
				continue
			}
			pt, ok := findSpot(placed, w, h)
			if !ok {
				continue
			}
			box := image.Rect(pt.X, pt.Y, pt.X+w, pt.Y+h)
			placed = append(placed, box.Inset(-cloudPadding))
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(cloudPalette[rng.Intn(len(cloudPalette))]),
				Face: fc,
				Dot:  fixed.Point26_6{X: fixed.I(pt.X), Y: fixed.I(pt.Y) + m.Ascent},
			}
			d.DrawString(e.Key)
			drawn++
			break
		}
		if size < cloudMinFont {
			// nothing smaller will fit either
			break
		}
	}
	if drawn == 0 {
		return nil, ErrEmptyCorpus
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// findSpot walks an Archimedean spiral from the canvas center and returns
// the top-left corner of the first w×h box that overlaps nothing placed.
func findSpot(placed []image.Rectangle, w, h int) (image.Point, bool) {
	cx, cy := float64(CloudWidth-w)/2, float64(CloudHeight-h)/2
	bounds := image.Rect(0, 0, CloudWidth, CloudHeight)
	limit := math.Hypot(CloudWidth, CloudHeight)
	for t := 0.0; t*2 < limit; t += 0.1 {
		x := int(cx + 2*t*math.Cos(t))
		y := int(cy + t*math.Sin(t))
		r := image.Rect(x, y, x+w, y+h)
		if !r.In(bounds) {
			continue
		}
		free := true
		for _, p := range placed {
			if p.Overlaps(r) {
				free = false
				break
			}
		}
		if free {
			return image.Point{X: x, Y: y}, true
		}
	}
	return image.Point{}, false
}
