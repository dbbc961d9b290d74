package traits

import (
	"math"
	"math/rand"
)

// Spot is one coloured marking placed on a body segment.
type Spot struct {
	Segment int     // body segment index, 0 = head end
	OffsetY float64 // lateral offset from the spine
	Size    float64
	Color   HSB
}

// Pattern is the immutable appearance of one koi.
type Pattern struct {
	Variety Variety
	Base    HSB
	Spots   []Spot
}

// patternFunc generates the spots of one variety. n is the shared base
// spot count drawn before dispatch (2..5).
type patternFunc func(rng *rand.Rand, n int) []Spot

var (
	black = HSB{0, 0, 20}
	white = HSB{0, 0, 90}
)

// patterns maps every variety to its generator. Varieties without markings
// map to solid.
var patterns = [NumVarieties]patternFunc{
	Kohaku: kohaku,
	Sanke:  sanke,
	Showa:  showa,

	ShiroUtsuri: shiroUtsuri,
	HiUtsuri:    hiUtsuri,
	KiUtsuri:    kiUtsuri,
	ShiroBekko:  bekko(2, 5, 2.5),
	AkaBekko:    bekko(2, 4, 2.5),
	KiBekko:     bekko(1, 3, 2),

	YamabukiOgon: solid,
	PlatinumOgon: solid,
	Hariwake:     hariwake,
	Kujaku:       kujaku,

	Asagi:  blueScaled,
	Shusui: blueScaled,

	AiGoromo:   aiGoromo,
	BudoGoromo: budoGoromo,
	Goshiki:    goshiki,

	Tancho:          tancho,
	GinRinKohaku:    kohaku,
	DoitsuKohaku:    kohaku,
	ButterflyKohaku: kohaku,

	Chagoi:  chagoi,
	Soragoi: solid,
	Benigoi: solid,
	Ochiba:  ochiba,
}

// GeneratePattern builds the spot pattern for v. The result depends only on
// the random draws taken from rng.
func GeneratePattern(v Variety, rng *rand.Rand) Pattern {
	info := v.Info()
	n := int(math.Floor(rng.Float64()*4 + 2))

	gen := patterns[info.Variety]
	if gen == nil {
		gen = solid
	}
	return Pattern{
		Variety: info.Variety,
		Base:    info.Base,
		Spots:   gen(rng, n),
	}
}

// NewPattern selects a weighted-random variety and generates its pattern.
func NewPattern(rng *rand.Rand) Pattern {
	return GeneratePattern(SelectVariety(rng), rng)
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return rng.Float64()*(hi-lo) + lo
}

func segment(rng *rand.Rand, lo, hi float64) int {
	return int(math.Floor(between(rng, lo, hi)))
}

func count(rng *rand.Rand, lo, hi float64) int {
	return int(math.Floor(between(rng, lo, hi)))
}

// hiColor draws a red (hi) colour.
func hiColor(rng *rand.Rand) HSB {
	return HSB{between(rng, 0, 15), between(rng, 70, 85), between(rng, 70, 80)}
}

func solid(*rand.Rand, int) []Spot { return nil }

func kohaku(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n)
	for i := 0; i < n; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 6),
			OffsetY: between(rng, -1.5, 1.5),
			Size:    between(rng, 2, 4.5),
			Color:   hiColor(rng),
		})
	}
	return spots
}

// sanke keeps sumi (black) off the head.
func sanke(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n)
	for i := 0; i < n; i++ {
		if rng.Float64() < 0.3 {
			spots = append(spots, Spot{
				Segment: segment(rng, 2, 7),
				OffsetY: between(rng, -1.5, 1.5),
				Size:    between(rng, 0.8, 2),
				Color:   black,
			})
			continue
		}
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 6),
			OffsetY: between(rng, -1.5, 1.5),
			Size:    between(rng, 2, 4),
			Color:   hiColor(rng),
		})
	}
	return spots
}

func showa(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n+2)
	for i := 0; i < n+2; i++ {
		isWhite := rng.Float64() < 0.5
		s := Spot{
			Segment: segment(rng, 0, 7),
			OffsetY: between(rng, -1.8, 1.8),
			Size:    between(rng, 1.8, 4.5),
		}
		if isWhite {
			s.Color = white
		} else {
			s.Color = hiColor(rng)
		}
		spots = append(spots, s)
	}
	return spots
}

func shiroUtsuri(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n+1)
	for i := 0; i < n+1; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 7),
			OffsetY: between(rng, -2, 2),
			Size:    between(rng, 2, 5),
			Color:   white,
		})
	}
	return spots
}

func hiUtsuri(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n+1)
	for i := 0; i < n+1; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 7),
			OffsetY: between(rng, -2, 2),
			Size:    between(rng, 2.5, 5),
			Color:   HSB{between(rng, 0, 12), between(rng, 75, 90), between(rng, 70, 85)},
		})
	}
	return spots
}

func kiUtsuri(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n)
	for i := 0; i < n; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 7),
			OffsetY: between(rng, -1.8, 1.8),
			Size:    between(rng, 2, 4.5),
			Color:   HSB{between(rng, 55, 65), between(rng, 70, 85), between(rng, 80, 90)},
		})
	}
	return spots
}

// bekko returns a generator for small sumi spots along the back.
func bekko(minCount, maxCount, maxSize float64) patternFunc {
	return func(rng *rand.Rand, _ int) []Spot {
		k := count(rng, minCount, maxCount)
		spots := make([]Spot, 0, k)
		for i := 0; i < k; i++ {
			spots = append(spots, Spot{
				Segment: segment(rng, 1, 7),
				OffsetY: between(rng, -0.8, 0.8),
				Size:    between(rng, 1, maxSize),
				Color:   black,
			})
		}
		return spots
	}
}

func kujaku(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n+1)
	for i := 0; i < n+1; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 1, 7),
			OffsetY: between(rng, -1.5, 1.5),
			Size:    between(rng, 1.5, 3.5),
			Color:   HSB{between(rng, 15, 40), between(rng, 50, 70), between(rng, 70, 85)},
		})
	}
	return spots
}

func hariwake(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n)
	for i := 0; i < n; i++ {
		isOrange := rng.Float64() < 0.6
		s := Spot{
			Segment: segment(rng, 0, 6),
			OffsetY: between(rng, -1.5, 1.5),
			Size:    between(rng, 2, 4),
		}
		if isOrange {
			s.Color = HSB{between(rng, 20, 35), between(rng, 60, 75), between(rng, 75, 85)}
		} else {
			s.Color = HSB{between(rng, 50, 60), between(rng, 50, 65), between(rng, 80, 90)}
		}
		spots = append(spots, s)
	}
	return spots
}

// blueScaled places orange on the belly side.
func blueScaled(rng *rand.Rand, _ int) []Spot {
	k := count(rng, 2, 4)
	spots := make([]Spot, 0, k)
	for i := 0; i < k; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 2, 6),
			OffsetY: between(rng, 0.5, 2.2),
			Size:    between(rng, 1.5, 3.5),
			Color:   HSB{between(rng, 10, 25), between(rng, 65, 80), between(rng, 70, 80)},
		})
	}
	return spots
}

func aiGoromo(rng *rand.Rand, n int) []Spot {
	edges := int(math.Floor(float64(n) * 0.7))
	spots := make([]Spot, 0, n+edges)
	for i := 0; i < n; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 6),
			OffsetY: between(rng, -1.5, 1.5),
			Size:    between(rng, 2, 4),
			Color:   hiColor(rng),
		})
	}
	for i := 0; i < edges; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 6),
			OffsetY: between(rng, -1.2, 1.2),
			Size:    between(rng, 0.8, 1.5),
			Color:   HSB{between(rng, 210, 230), between(rng, 40, 60), between(rng, 50, 65)},
		})
	}
	return spots
}

func budoGoromo(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n)
	for i := 0; i < n; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 6),
			OffsetY: between(rng, -1.5, 1.5),
			Size:    between(rng, 2, 4),
			Color:   HSB{between(rng, 330, 350), between(rng, 60, 75), between(rng, 50, 65)},
		})
	}
	return spots
}

func goshiki(rng *rand.Rand, n int) []Spot {
	spots := make([]Spot, 0, n+2)
	for i := 0; i < n+2; i++ {
		var c HSB
		switch segment(rng, 0, 4) {
		case 0:
			c = hiColor(rng)
		case 1:
			c = black
		case 2:
			c = HSB{between(rng, 210, 230), between(rng, 30, 50), between(rng, 50, 70)}
		default:
			c = white
		}
		spots = append(spots, Spot{
			Segment: segment(rng, 0, 7),
			OffsetY: between(rng, -1.8, 1.8),
			Size:    between(rng, 1.5, 3.5),
			Color:   c,
		})
	}
	return spots
}

// tancho has exactly one red crown on the head.
func tancho(rng *rand.Rand, _ int) []Spot {
	return []Spot{{
		Segment: 0,
		OffsetY: between(rng, -0.3, 0.3),
		Size:    between(rng, 2.5, 3.5),
		Color:   HSB{0, 80, 75},
	}}
}

func ochiba(rng *rand.Rand, _ int) []Spot {
	k := count(rng, 2, 4)
	spots := make([]Spot, 0, k)
	for i := 0; i < k; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 1, 6),
			OffsetY: between(rng, -1, 1),
			Size:    between(rng, 1.5, 3),
			Color:   HSB{between(rng, 30, 40), between(rng, 35, 45), between(rng, 45, 55)},
		})
	}
	return spots
}

// chagoi occasionally carries one faint darker patch.
func chagoi(rng *rand.Rand, _ int) []Spot {
	if rng.Float64() >= 0.3 {
		return nil
	}
	k := count(rng, 1, 2)
	spots := make([]Spot, 0, k)
	for i := 0; i < k; i++ {
		spots = append(spots, Spot{
			Segment: segment(rng, 1, 6),
			OffsetY: between(rng, -1, 1),
			Size:    between(rng, 2, 4),
			Color:   HSB{between(rng, 25, 35), between(rng, 40, 50), between(rng, 40, 48)},
		})
	}
	return spots
}
