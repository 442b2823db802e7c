package main

import (
	"errors"
	"math"
	"slices"
	"testing"
)

// Population Generation Tests
//
// Group sizes must always sum to the requested population, whatever the
// shape. Incomes are drawn per group from [i*span, (i+1)*span] inclusive and
// returned sorted ascending.

// fakeRandomSource returns a fixed offset into every requested range
type fakeRandomSource struct {
	pick  func(n int) int
	calls int
}

func (f *fakeRandomSource) IntN(n int) int {
	f.calls++
	return f.pick(n)
}

func lowestRandom() *fakeRandomSource  { return &fakeRandomSource{pick: func(n int) int { return 0 }} }
func highestRandom() *fakeRandomSource { return &fakeRandomSource{pick: func(n int) int { return n - 1 }} }

func sumInts(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// =============================================================================
// Group Size Shaping
// =============================================================================

func TestShapeGroupSizes_ConservesPopulation(t *testing.T) {
	populations := []int{1, 7, 10, 99, 200, 1000}
	groupCounts := []int{1, 2, 3, 10, 25}

	for _, dist := range AllDistributionTypes() {
		for _, pop := range populations {
			for _, groups := range groupCounts {
				sizes := ShapeGroupSizes(dist, pop, groups)
				if len(sizes) != groups {
					t.Errorf("%s %d/%d: got %d groups, want %d", dist, pop, groups, len(sizes), groups)
					continue
				}
				if got := sumInts(sizes); got != pop {
					t.Errorf("%s %d/%d: sizes sum to %d, want %d (%v)", dist, pop, groups, got, pop, sizes)
				}
			}
		}
	}
}

func TestShapeGroupSizes_EqualRemainderGoesToLastGroups(t *testing.T) {
	tests := []struct {
		pop, groups int
		want        []int
	}{
		{20, 5, []int{4, 4, 4, 4, 4}},
		{23, 5, []int{4, 4, 5, 5, 5}},
		{3, 5, []int{0, 0, 1, 1, 1}},
		{1, 1, []int{1}},
	}

	for _, tt := range tests {
		got := ShapeGroupSizes(DistributionEqual, tt.pop, tt.groups)
		if !slices.Equal(got, tt.want) {
			t.Errorf("equal %d/%d: got %v, want %v", tt.pop, tt.groups, got, tt.want)
		}
	}
}

func TestShapeGroupSizes_KnownProfiles(t *testing.T) {
	tests := []struct {
		dist DistributionType
		want []int
	}{
		{DistributionNormal, []int{5, 9, 16, 24, 31, 35, 31, 24, 16, 9}},
		{DistributionSkewed, []int{55, 40, 30, 22, 16, 12, 9, 7, 5, 4}},
		{DistributionExtreme, []int{79, 48, 29, 18, 11, 7, 4, 2, 1, 1}},
	}

	for _, tt := range tests {
		got := ShapeGroupSizes(tt.dist, 200, 10)
		if !slices.Equal(got, tt.want) {
			t.Errorf("%s 200/10: got %v, want %v", tt.dist, got, tt.want)
		}
	}
}

func TestShapeGroupSizes_SkewedDecreases(t *testing.T) {
	for _, dist := range []DistributionType{DistributionSkewed, DistributionExtreme} {
		sizes := ShapeGroupSizes(dist, 1000, 10)
		for i := 1; i < len(sizes); i++ {
			if sizes[i] > sizes[i-1] {
				t.Errorf("%s: group %d (%d) larger than group %d (%d)", dist, i, sizes[i], i-1, sizes[i-1])
			}
		}
	}
}

func TestShapeGroupSizes_NoGroups(t *testing.T) {
	if got := ShapeGroupSizes(DistributionNormal, 100, 0); got != nil {
		t.Errorf("expected nil for zero groups, got %v", got)
	}
}

func TestNormalizeToTotal_DiffGoesToFirstLargest(t *testing.T) {
	// Three equal weights over 2 people round to [1,1,1]; the -1 lands on index 0
	if got := normalizeToTotal([]float64{1, 1, 1}, 2); !slices.Equal(got, []int{0, 1, 1}) {
		t.Errorf("overshoot: got %v, want [0 1 1]", got)
	}
	// Over 4 people they round to [1,1,1]; the +1 lands on index 0
	if got := normalizeToTotal([]float64{1, 1, 1}, 4); !slices.Equal(got, []int{2, 1, 1}) {
		t.Errorf("undershoot: got %v, want [2 1 1]", got)
	}
}

func TestShapeGroupSizes_RoundingCanGoNegative(t *testing.T) {
	// Many weights just above x.5 overshoot by more than the largest group.
	// RunSimulation rejects this profile; the shaper itself still conserves the total.
	sizes := ShapeGroupSizes(DistributionNormal, 58, 33)
	if sumInts(sizes) != 58 {
		t.Fatalf("sizes sum to %d, want 58", sumInts(sizes))
	}
	if slices.Min(sizes) >= 0 {
		t.Errorf("expected a negative group for normal 58/33, got %v", sizes)
	}
}

// =============================================================================
// Income Generation
// =============================================================================

func TestGenerateIncomes_SortedAndCounted(t *testing.T) {
	sizes := ShapeGroupSizes(DistributionSkewed, 500, 10)
	incomes, err := GenerateIncomes(10, 1000, sizes, NewRandomSource(7))
	if err != nil {
		t.Fatalf("GenerateIncomes: %v", err)
	}
	if len(incomes) != 500 {
		t.Errorf("got %d incomes, want 500", len(incomes))
	}
	if !slices.IsSorted(incomes) {
		t.Error("incomes are not sorted ascending")
	}
	if incomes[0] < 0 || incomes[len(incomes)-1] > 10*1000 {
		t.Errorf("incomes outside [0, 10000]: min %d max %d", incomes[0], incomes[len(incomes)-1])
	}
}

func TestGenerateIncomes_StaysInsideGroup(t *testing.T) {
	for group := 0; group < 5; group++ {
		sizes := make([]int, 5)
		sizes[group] = 200
		incomes, err := GenerateIncomes(5, 100, sizes, NewRandomSource(uint64(group+1)))
		if err != nil {
			t.Fatalf("group %d: %v", group, err)
		}
		lower, upper := group*100, (group+1)*100
		for _, v := range incomes {
			if v < lower || v > upper {
				t.Errorf("group %d: income %d outside [%d, %d]", group, v, lower, upper)
			}
		}
	}
}

func TestGenerateIncomes_InclusiveBounds(t *testing.T) {
	sizes := []int{1, 0, 2}

	low, err := GenerateIncomes(3, 10, sizes, lowestRandom())
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 20, 20}; !slices.Equal(low, want) {
		t.Errorf("lowest draws: got %v, want %v", low, want)
	}

	rng := highestRandom()
	high, err := GenerateIncomes(3, 10, sizes, rng)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{10, 30, 30}; !slices.Equal(high, want) {
		t.Errorf("highest draws: got %v, want %v", high, want)
	}
	if rng.calls != 3 {
		t.Errorf("expected one draw per person, got %d", rng.calls)
	}
}

func TestGenerateIncomes_SameSeedSameIncomes(t *testing.T) {
	sizes := ShapeGroupSizes(DistributionNormal, 300, 10)
	a, err := GenerateIncomes(10, 5000, sizes, NewRandomSource(12345))
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateIncomes(10, 5000, sizes, NewRandomSource(12345))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a, b) {
		t.Error("same seed produced different incomes")
	}
}

func TestGenerateIncomes_EmptyGroups(t *testing.T) {
	incomes, err := GenerateIncomes(3, 10, []int{0, 0, 0}, lowestRandom())
	if err != nil {
		t.Fatal(err)
	}
	if len(incomes) != 0 {
		t.Errorf("expected no incomes, got %v", incomes)
	}
}

func TestGenerateIncomes_Validation(t *testing.T) {
	tests := []struct {
		name      string
		groups    int
		span      int
		sizes     []int
		rng       RandomSource
		wantField string
	}{
		{"zero groups", 0, 10, []int{}, lowestRandom(), "groups"},
		{"zero span", 2, 0, []int{1, 1}, lowestRandom(), "group_span"},
		{"negative span", 2, -5, []int{1, 1}, lowestRandom(), "group_span"},
		{"length mismatch", 3, 10, []int{1, 1}, lowestRandom(), "group_sizes"},
		{"negative size", 2, 10, []int{3, -1}, lowestRandom(), "group_sizes"},
		{"no random source", 2, 10, []int{1, 1}, nil, "rng"},
		{"span overflows", 2, math.MaxInt / 2, []int{1, 1}, lowestRandom(), "group_span"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateIncomes(tt.groups, tt.span, tt.sizes, tt.rng)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Errorf("expected field %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestNewSeed_NonZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		if NewSeed() == 0 {
			t.Fatal("NewSeed returned 0")
		}
	}
}
