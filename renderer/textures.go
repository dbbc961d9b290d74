package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/pthm-cable/koipond/traits"
)

// StampKind distinguishes cached stamp sources.
type StampKind uint8

const (
	StampSpot StampKind = iota
	StampBody
)

// StampKey identifies a tinted stamp. Colour and alpha are quantised so
// near-identical tints share an entry.
type StampKey struct {
	Kind    StampKind
	Index   int
	H, S, B int
	A       int
	Blend   BlendMode
}

// NewStampKey quantises h, s, b to the nearest 10 and alpha to the nearest 20.
func NewStampKey(kind StampKind, index int, c traits.HSB, alpha float64, blend BlendMode) StampKey {
	return StampKey{
		Kind:  kind,
		Index: index,
		H:     quantize(c.H, 10),
		S:     quantize(c.S, 10),
		B:     quantize(c.B, 10),
		A:     quantize(alpha, 20),
		Blend: blend,
	}
}

func quantize(v, step float64) int {
	return int(math.Round(v/step) * step)
}

// StampCache is a bounded get-or-create cache of tinted stamps. When full,
// the oldest inserted entry is evicted and handed to the release func.
type StampCache struct {
	max     int
	entries map[StampKey]*image.NRGBA
	order   []StampKey
	release func(StampKey, *image.NRGBA)

	hits, misses, evictions int
}

// NewStampCache creates a cache holding at most max entries. release may be
// nil.
func NewStampCache(max int, release func(StampKey, *image.NRGBA)) *StampCache {
	if max < 1 {
		max = 1
	}
	return &StampCache{
		max:     max,
		entries: make(map[StampKey]*image.NRGBA, max),
		order:   make([]StampKey, 0, max),
		release: release,
	}
}

// GetOrCreate returns the cached stamp for key, building it with create on
// a miss. A nil result from create is not cached.
func (c *StampCache) GetOrCreate(key StampKey, create func() *image.NRGBA) *image.NRGBA {
	if img, ok := c.entries[key]; ok {
		c.hits++
		return img
	}
	c.misses++
	img := create()
	if img == nil {
		return nil
	}
	if len(c.order) >= c.max {
		c.evictOldest()
	}
	c.entries[key] = img
	c.order = append(c.order, key)
	return img
}

func (c *StampCache) evictOldest() {
	oldest := c.order[0]
	copy(c.order, c.order[1:])
	c.order = c.order[:len(c.order)-1]
	img := c.entries[oldest]
	delete(c.entries, oldest)
	c.evictions++
	if c.release != nil {
		c.release(oldest, img)
	}
}

// Len returns the number of cached stamps.
func (c *StampCache) Len() int { return len(c.order) }

// Stats returns hit, miss and eviction counts.
func (c *StampCache) Stats() (hits, misses, evictions int) {
	return c.hits, c.misses, c.evictions
}

// Clear releases and drops every entry.
func (c *StampCache) Clear() {
	for len(c.order) > 0 {
		c.evictOldest()
	}
}

// BrushTextures holds the sumi-e brush images and the tinted stamp cache.
type BrushTextures struct {
	body, fin, tail, paper image.Image
	spots                  []image.Image
	cache                  *StampCache
}

// NewBrushTextures assembles textures from decoded images; any may be nil.
func NewBrushTextures(body image.Image, spots []image.Image, cacheSize int) *BrushTextures {
	return &BrushTextures{
		body:  body,
		spots: spots,
		cache: NewStampCache(cacheSize, nil),
	}
}

// LoadBrushTextures decodes body.png, fin.png, tail.png, paper.png and
// spot-*.png (in name order) from dir. Missing files are skipped; decode
// failures are joined into the returned error alongside what did load.
func LoadBrushTextures(dir string, cacheSize int) (*BrushTextures, error) {
	t := NewBrushTextures(nil, nil, cacheSize)
	var errs []error
	load := func(name string) image.Image {
		img, err := loadPNG(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		return img
	}
	t.body = load("body.png")
	t.fin = load("fin.png")
	t.tail = load("tail.png")
	t.paper = load("paper.png")

	matches, err := filepath.Glob(filepath.Join(dir, "spot-*.png"))
	if err != nil {
		errs = append(errs, err)
	}
	sort.Strings(matches)
	for _, m := range matches {
		if img := load(filepath.Base(m)); img != nil {
			t.spots = append(t.spots, img)
		}
	}
	return t, errors.Join(errs...)
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Ready reports whether any texture loaded. Safe on a nil receiver.
func (t *BrushTextures) Ready() bool {
	return t != nil && (t.body != nil || t.fin != nil || t.tail != nil || t.paper != nil || len(t.spots) > 0)
}

// Get returns a named texture: body, fin, tail or paper.
func (t *BrushTextures) Get(name string) image.Image {
	if t == nil {
		return nil
	}
	switch name {
	case "body":
		return t.body
	case "fin":
		return t.fin
	case "tail":
		return t.tail
	case "paper":
		return t.paper
	}
	return nil
}

// SpotCount returns the number of spot textures.
func (t *BrushTextures) SpotCount() int {
	if t == nil {
		return 0
	}
	return len(t.spots)
}

// Spot returns the spot texture selected by seed modulo the count.
func (t *BrushTextures) Spot(seed int) image.Image {
	n := t.SpotCount()
	if n == 0 {
		return nil
	}
	return t.spots[((seed%n)+n)%n]
}

// Cache exposes the stamp cache.
func (t *BrushTextures) Cache() *StampCache { return t.cache }

// TintedSpot returns spot texture index tinted to c at alpha (0-255).
func (t *BrushTextures) TintedSpot(index int, c traits.HSB, alpha float64, blend BlendMode) *image.NRGBA {
	if index < 0 || index >= t.SpotCount() {
		return nil
	}
	key := NewStampKey(StampSpot, index, c, alpha, blend)
	return t.cache.GetOrCreate(key, func() *image.NRGBA {
		return tint(t.spots[index], key, alpha)
	})
}

// TintedBody returns the body texture tinted to c at alpha (0-255).
func (t *BrushTextures) TintedBody(c traits.HSB, alpha float64) *image.NRGBA {
	if t == nil || t.body == nil {
		return nil
	}
	key := NewStampKey(StampBody, -1, c, alpha, BlendMultiply)
	return t.cache.GetOrCreate(key, func() *image.NRGBA {
		return tint(t.body, key, alpha)
	})
}

// tint multiplies src by the key's quantised colour and scales its alpha by
// alpha (0-255).
func tint(src image.Image, key StampKey, alpha float64) *image.NRGBA {
	b := src.Bounds()
	tc := HSBA(traits.HSB{H: float64(key.H), S: float64(key.S), B: float64(key.B)}, 1)
	alpha = math.Min(255, math.Max(0, alpha)) / 255
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{
				R: uint8(uint32(p.R) * uint32(tc.R) / 255),
				G: uint8(uint32(p.G) * uint32(tc.G) / 255),
				B: uint8(uint32(p.B) * uint32(tc.B) / 255),
				A: uint8(math.Round(float64(p.A) * alpha)),
			})
		}
	}
	return out
}
