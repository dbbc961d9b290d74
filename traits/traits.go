// Package traits defines koi varieties and their coloration rules.
package traits

import (
	"math/rand"
)

// HSB is a hue/saturation/brightness colour (h in [0, 360), s and b in [0, 100]).
type HSB struct {
	H, S, B float64
}

// Variety identifies a koi variety.
type Variety uint8

const (
	// Gosanke
	Kohaku Variety = iota
	Sanke
	Showa

	// Utsurimono & Bekko
	ShiroUtsuri
	HiUtsuri
	KiUtsuri
	ShiroBekko
	AkaBekko
	KiBekko

	// Hikarimono
	YamabukiOgon
	PlatinumOgon
	Hariwake
	Kujaku

	// Blue-scaled
	Asagi
	Shusui

	// Koromo & Goshiki
	AiGoromo
	BudoGoromo
	Goshiki

	// Specialty
	Tancho
	GinRinKohaku
	DoitsuKohaku
	ButterflyKohaku

	// Solid / naturalistic
	Chagoi
	Soragoi
	Benigoi
	Ochiba

	NumVarieties
)

// VarietyInfo is one row of the variety catalog.
type VarietyInfo struct {
	Variety Variety
	Name    string
	Base    HSB
	Weight  float64 // relative share of the population
}

// Catalog lists every variety with its base colour and population weight.
// Weights sum to 100.
var Catalog = [NumVarieties]VarietyInfo{
	{Kohaku, "kohaku", HSB{0, 0, 90}, 15},
	{Sanke, "sanke", HSB{0, 0, 90}, 10},
	{Showa, "showa", HSB{0, 0, 30}, 10},

	{ShiroUtsuri, "shiro-utsuri", HSB{0, 0, 25}, 5},
	{HiUtsuri, "hi-utsuri", HSB{0, 0, 25}, 4},
	{KiUtsuri, "ki-utsuri", HSB{0, 0, 25}, 2},
	{ShiroBekko, "shiro-bekko", HSB{0, 0, 88}, 2},
	{AkaBekko, "aka-bekko", HSB{5, 75, 75}, 1},
	{KiBekko, "ki-bekko", HSB{50, 60, 80}, 1},

	{YamabukiOgon, "yamabuki-ogon", HSB{45, 50, 85}, 5},
	{PlatinumOgon, "platinum-ogon", HSB{200, 8, 88}, 3},
	{Hariwake, "hariwake", HSB{0, 0, 88}, 4},
	{Kujaku, "kujaku", HSB{0, 0, 88}, 3},

	{Asagi, "asagi", HSB{200, 35, 65}, 5},
	{Shusui, "shusui", HSB{200, 40, 68}, 3},

	{AiGoromo, "ai-goromo", HSB{0, 0, 90}, 3},
	{BudoGoromo, "budo-goromo", HSB{0, 0, 90}, 2},
	{Goshiki, "goshiki", HSB{210, 25, 60}, 2},

	{Tancho, "tancho", HSB{0, 0, 90}, 3},
	{GinRinKohaku, "gin-rin-kohaku", HSB{0, 0, 90}, 2},
	{DoitsuKohaku, "doitsu-kohaku", HSB{0, 0, 90}, 3},
	{ButterflyKohaku, "butterfly-kohaku", HSB{0, 0, 90}, 2},

	{Chagoi, "chagoi", HSB{30, 35, 50}, 3},
	{Soragoi, "soragoi", HSB{0, 0, 60}, 3},
	{Benigoi, "benigoi", HSB{5, 80, 70}, 2},
	{Ochiba, "ochiba", HSB{40, 30, 70}, 2},
}

// String returns the variety's catalog name.
func (v Variety) String() string {
	if v >= NumVarieties {
		return "unknown"
	}
	return Catalog[v].Name
}

// Info returns the catalog row for v.
func (v Variety) Info() VarietyInfo {
	if v >= NumVarieties {
		return Catalog[Kohaku]
	}
	return Catalog[v]
}

// ParseVariety looks a variety up by catalog name.
func ParseVariety(name string) (Variety, bool) {
	for _, info := range Catalog {
		if info.Name == name {
			return info.Variety, true
		}
	}
	return 0, false
}

// TotalWeight returns the sum of all catalog weights.
func TotalWeight() float64 {
	var total float64
	for _, info := range Catalog {
		total += info.Weight
	}
	return total
}

// SelectVariety draws a variety with probability proportional to its weight.
func SelectVariety(rng *rand.Rand) Variety {
	r := rng.Float64() * TotalWeight()
	var cumulative float64
	for _, info := range Catalog {
		cumulative += info.Weight
		if r < cumulative {
			return info.Variety
		}
	}
	return Catalog[0].Variety
}
