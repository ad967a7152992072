package dispatch

import (
	"context"
	"math"
	"testing"

	apperrors "github.com/dispatcher/cvrp-engine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// euclideanMatrix builds a DistanceMatrixCache of straight-line distances
// between locations, used in place of a real routing oracle for
// reproducible tests.
func euclideanMatrix(locations []Location) *DistanceMatrixCache {
	n := len(locations)
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
		for j := range data[i] {
			dx := locations[i].X - locations[j].X
			dy := locations[i].Y - locations[j].Y
			data[i][j] = math.Sqrt(dx*dx + dy*dy)
		}
	}
	return NewDistanceMatrixCache(locations, data)
}

func loc(id uint64, x, y, demand float64) Location {
	return Location{ID: id, X: x, Y: y, Demand: demand}
}

func TestSplitIntoRoutes_ConcatenationEqualsGenes(t *testing.T) {
	genes := []Location{
		loc(1, 0, 0, 3), loc(2, 0, 0, 3), loc(3, 0, 0, 3), loc(4, 0, 0, 3),
	}
	routes := splitIntoRoutes(genes, 5)

	var got []Location
	for _, r := range routes {
		got = append(got, r.Stops...)
	}
	assert.Equal(t, genes, got)
}

func TestSplitIntoRoutes_OverflowingGeneBecomesOwnRoute(t *testing.T) {
	genes := []Location{loc(1, 0, 0, 100)}
	routes := splitIntoRoutes(genes, 5)
	require.Len(t, routes, 1)
	assert.Equal(t, 100.0, routes[0].Demand())
}

func TestSplitIntoRoutes_PacksGreedily(t *testing.T) {
	genes := []Location{
		loc(1, 0, 0, 6), loc(2, 0, 0, 6), loc(3, 0, 0, 6),
	}
	routes := splitIntoRoutes(genes, 10)
	require.Len(t, routes, 2)
	assert.Equal(t, []Location{genes[0]}, routes[0].Stops)
	assert.Equal(t, []Location{genes[1], genes[2]}, routes[1].Stops)
}

func TestEvaluate_FitnessGreaterOrEqualDistance(t *testing.T) {
	depot := loc(0, 0, 0, 0)
	genes := []Location{loc(1, 10, 0, 6), loc(2, 0, 10, 6)}
	matrix := euclideanMatrix(append([]Location{depot}, genes...))

	noViolation := evaluate(Chromosome{Genes: genes}, depot, 20, matrix)
	assert.InDelta(t, noViolation.TotalDistance, noViolation.Fitness, 1e-9)
	assert.Equal(t, 0.0, noViolation.CapacityViolation)

	withViolation := evaluate(Chromosome{Genes: genes}, depot, 5, matrix)
	assert.Greater(t, withViolation.Fitness, withViolation.TotalDistance)
	assert.Equal(t, withViolation.TotalDistance+CapacityPenalty*withViolation.CapacityViolation, withViolation.Fitness)
}

func TestOX1Child_IsValidPermutation(t *testing.T) {
	p1 := []Location{loc(1, 0, 0, 1), loc(2, 0, 0, 1), loc(3, 0, 0, 1), loc(4, 0, 0, 1), loc(5, 0, 0, 1)}
	p2 := []Location{loc(3, 0, 0, 1), loc(1, 0, 0, 1), loc(5, 0, 0, 1), loc(4, 0, 0, 1), loc(2, 0, 0, 1)}

	for start := 0; start <= len(p1); start++ {
		for end := start; end <= len(p1); end++ {
			child := ox1Child(p1, p2, start, end)
			assertIsPermutation(t, p1, child.Genes)
		}
	}
}

func assertIsPermutation(t *testing.T, source, genes []Location) {
	t.Helper()
	require.Len(t, genes, len(source))
	seen := make(map[uint64]bool, len(genes))
	for _, g := range genes {
		assert.False(t, seen[g.ID], "duplicate gene id %d", g.ID)
		seen[g.ID] = true
	}
	for _, s := range source {
		assert.True(t, seen[s.ID], "missing gene id %d", s.ID)
	}
}

func TestElitistReplace_IncumbentSurvivesAtSlotZero(t *testing.T) {
	s := &GASolver{params: GAParams{PopulationSize: 4}}
	incumbent := Chromosome{Fitness: 1}
	offspring := []Chromosome{{Fitness: 2}, {Fitness: 3}, {Fitness: 4}, {Fitness: 5}}

	next := s.elitistReplace(incumbent, offspring)
	require.Len(t, next, 4)
	assert.Equal(t, incumbent, next[0])
	assert.Equal(t, offspring[0], next[1])
	assert.Equal(t, offspring[1], next[2])
	assert.Equal(t, offspring[2], next[3])
}

func TestGASolver_Solve_IsPermutationOfCustomers(t *testing.T) {
	depot := loc(0, 0, 0, 0)
	customers := []Location{
		loc(1, 1, 0, 1), loc(2, 0, 1, 1), loc(3, -1, 0, 1), loc(4, 0, -1, 1),
	}
	matrix := euclideanMatrix(append([]Location{depot}, customers...))

	solver := NewSeededGASolver(GAParams{
		PopulationSize: 20, MutationRate: 0.05, CrossoverRate: 0.9,
		Generations: 30, Patience: 10, TournamentSize: 3,
	}, 1)

	best, err := solver.Solve(context.Background(), depot, customers, 10, matrix)
	require.NoError(t, err)
	assertIsPermutation(t, customers, best.Genes)

	var fromRoutes []Location
	for _, r := range best.Routes {
		fromRoutes = append(fromRoutes, r.Stops...)
	}
	assert.Equal(t, best.Genes, fromRoutes)
}

func TestGASolver_Solve_DeterministicGivenSeed(t *testing.T) {
	depot := loc(0, 0, 0, 0)
	customers := []Location{
		loc(1, 1, 0, 1), loc(2, 0, 1, 1), loc(3, -1, 0, 1), loc(4, 0, -1, 1), loc(5, 2, 2, 1),
	}
	matrix := euclideanMatrix(append([]Location{depot}, customers...))
	params := GAParams{PopulationSize: 16, MutationRate: 0.05, CrossoverRate: 0.9, Generations: 25, Patience: 8, TournamentSize: 3}

	r1, err := NewSeededGASolver(params, 99).Solve(context.Background(), depot, customers, 10, matrix)
	require.NoError(t, err)
	r2, err := NewSeededGASolver(params, 99).Solve(context.Background(), depot, customers, 10, matrix)
	require.NoError(t, err)

	assert.Equal(t, r1.Genes, r2.Genes)
	assert.Equal(t, r1.Fitness, r2.Fitness)
}

func TestGASolver_Solve_S1TwoCustomersOneSubRoute(t *testing.T) {
	depot := loc(0, 0, 0, 0)
	c1 := loc(1, 1, 0, 1)
	c2 := loc(2, 0, 1, 1)
	matrix := euclideanMatrix([]Location{depot, c1, c2})

	solver := NewSeededGASolver(DefaultGAParams(), 7)
	best, err := solver.Solve(context.Background(), depot, []Location{c1, c2}, 10, matrix)
	require.NoError(t, err)

	require.Len(t, best.Routes, 1)
	assert.InDelta(t, 2+math.Sqrt2, best.TotalDistance, 1e-6)
}

func TestGASolver_Solve_S2TwoSubRoutes(t *testing.T) {
	depot := loc(0, 0, 0, 0)
	c1 := loc(1, 10, 0, 6)
	c2 := loc(2, -10, 0, 6)
	matrix := euclideanMatrix([]Location{depot, c1, c2})

	solver := NewSeededGASolver(DefaultGAParams(), 7)
	best, err := solver.Solve(context.Background(), depot, []Location{c1, c2}, 10, matrix)
	require.NoError(t, err)

	require.Len(t, best.Routes, 2)
	assert.InDelta(t, 40.0, best.TotalDistance, 1e-6)
	assert.Equal(t, 0.0, best.CapacityViolation)
}

func TestGASolver_Solve_UnreachableFailsExplicitly(t *testing.T) {
	depot := loc(0, 0, 0, 0)
	c1 := loc(1, 1, 0, 1)
	inf := math.Inf(1)
	matrix := NewDistanceMatrixCache([]Location{depot, c1}, [][]float64{
		{0, inf},
		{inf, 0},
	})

	solver := NewSeededGASolver(GAParams{PopulationSize: 4, MutationRate: 0.01, CrossoverRate: 0.9, Generations: 5, Patience: 3, TournamentSize: 2}, 1)
	_, err := solver.Solve(context.Background(), depot, []Location{c1}, 10, matrix)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, "UNREACHABLE", appErr.Code)
}

func TestGASolver_Solve_NoCustomersIsInvalidInput(t *testing.T) {
	depot := loc(0, 0, 0, 0)
	matrix := euclideanMatrix([]Location{depot})

	solver := NewGASolver(DefaultGAParams())
	_, err := solver.Solve(context.Background(), depot, nil, 10, matrix)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}

func TestDistanceMatrixCache_MissPanics(t *testing.T) {
	matrix := NewDistanceMatrixCache([]Location{{ID: 1}}, [][]float64{{0}})
	assert.Panics(t, func() {
		matrix.Distance(1, 999)
	})
}
