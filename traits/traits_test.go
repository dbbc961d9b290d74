package traits

import (
	"math"
	"math/rand"
	"testing"
)

func TestCatalogWeights(t *testing.T) {
	if got := TotalWeight(); got != 100 {
		t.Errorf("TotalWeight() = %v, want 100", got)
	}
	for i, info := range Catalog {
		if info.Variety != Variety(i) {
			t.Errorf("Catalog[%d].Variety = %v, want %d", i, info.Variety, i)
		}
		if info.Weight <= 0 {
			t.Errorf("%s has non-positive weight", info.Name)
		}
	}
}

func TestSelectVarietyDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const draws = 200000

	var counts [NumVarieties]int
	for i := 0; i < draws; i++ {
		counts[SelectVariety(rng)]++
	}

	total := TotalWeight()
	for _, info := range Catalog {
		want := info.Weight / total
		got := float64(counts[info.Variety]) / draws
		if math.Abs(got-want) > 0.01 {
			t.Errorf("%s frequency = %.4f, want %.4f", info.Name, got, want)
		}
	}
}

func TestParseVariety(t *testing.T) {
	tests := []struct {
		name string
		want Variety
		ok   bool
	}{
		{"kohaku", Kohaku, true},
		{"gin-rin-kohaku", GinRinKohaku, true},
		{"ochiba", Ochiba, true},
		{"goldfish", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVariety(tt.name)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("ParseVariety(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
			if ok && got.String() != tt.name {
				t.Errorf("String() = %q, want %q", got.String(), tt.name)
			}
		})
	}
}

func TestTanchoSingleHeadSpot(t *testing.T) {
	for seed := int64(0); seed < 500; seed++ {
		p := GeneratePattern(Tancho, rand.New(rand.NewSource(seed)))
		if len(p.Spots) != 1 {
			t.Fatalf("seed %d: %d spots, want 1", seed, len(p.Spots))
		}
		if p.Spots[0].Segment != 0 {
			t.Fatalf("seed %d: segment %d, want 0", seed, p.Spots[0].Segment)
		}
	}
}

func TestSankeBlackNeverOnHead(t *testing.T) {
	for seed := int64(0); seed < 500; seed++ {
		p := GeneratePattern(Sanke, rand.New(rand.NewSource(seed)))
		for _, s := range p.Spots {
			if s.Color == black && s.Segment < 2 {
				t.Fatalf("seed %d: sumi on segment %d", seed, s.Segment)
			}
		}
	}
}

func TestSolidVarietiesHaveNoSpots(t *testing.T) {
	for _, v := range []Variety{YamabukiOgon, PlatinumOgon, Soragoi, Benigoi} {
		t.Run(v.String(), func(t *testing.T) {
			for seed := int64(0); seed < 50; seed++ {
				p := GeneratePattern(v, rand.New(rand.NewSource(seed)))
				if len(p.Spots) != 0 {
					t.Fatalf("seed %d: %d spots, want 0", seed, len(p.Spots))
				}
			}
		})
	}
}

func TestPatternBounds(t *testing.T) {
	for v := Variety(0); v < NumVarieties; v++ {
		t.Run(v.String(), func(t *testing.T) {
			for seed := int64(0); seed < 200; seed++ {
				p := GeneratePattern(v, rand.New(rand.NewSource(seed)))
				if p.Variety != v || p.Base != Catalog[v].Base {
					t.Fatalf("pattern header = %v %v", p.Variety, p.Base)
				}
				if len(p.Spots) > 9 {
					t.Fatalf("seed %d: %d spots", seed, len(p.Spots))
				}
				for _, s := range p.Spots {
					if s.Segment < 0 || s.Segment > 6 {
						t.Fatalf("seed %d: segment %d out of range", seed, s.Segment)
					}
					if s.Size <= 0 {
						t.Fatalf("seed %d: size %v", seed, s.Size)
					}
					if s.Color.H < 0 || s.Color.H >= 360 || s.Color.S > 100 || s.Color.B > 100 {
						t.Fatalf("seed %d: colour %v", seed, s.Color)
					}
				}
			}
		})
	}
}

func TestGeneratePatternDeterministic(t *testing.T) {
	a := NewPattern(rand.New(rand.NewSource(7)))
	b := NewPattern(rand.New(rand.NewSource(7)))
	if a.Variety != b.Variety || len(a.Spots) != len(b.Spots) {
		t.Fatalf("patterns differ: %v vs %v", a, b)
	}
	for i := range a.Spots {
		if a.Spots[i] != b.Spots[i] {
			t.Errorf("spot %d differs: %v vs %v", i, a.Spots[i], b.Spots[i])
		}
	}
}
