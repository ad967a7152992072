package dispatch

import (
	"context"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/dispatcher/cvrp-engine/pkg/errors"
)

// GAParams holds the dispatch orchestrator's genetic-algorithm defaults.
type GAParams struct {
	PopulationSize int
	MutationRate   float64
	CrossoverRate  float64
	Generations    int
	Patience       int
	TournamentSize int
}

// DefaultGAParams returns the parameters the dispatch orchestrator uses for
// every solve.
func DefaultGAParams() GAParams {
	return GAParams{
		PopulationSize: 50,
		MutationRate:   0.01,
		CrossoverRate:  0.9,
		Generations:    200,
		Patience:       20,
		TournamentSize: 5,
	}
}

// GASolver evolves a permutation encoding of one cluster's customers into a
// set of capacity-respecting sub-routes minimising penalised distance.
type GASolver struct {
	params GAParams
	rng    *rand.Rand
}

// NewGASolver builds a solver with a fresh, unseeded RNG; each run is
// distinct. Use
// NewSeededGASolver when reproducibility matters.
func NewGASolver(params GAParams) *GASolver {
	return &GASolver{params: params, rng: rand.New(rand.NewSource(rand.Int63()))}
}

// NewSeededGASolver builds a solver with a caller-supplied seed, used by
// tests asserting bit-identical output across runs.
func NewSeededGASolver(params GAParams, seed int64) *GASolver {
	return &GASolver{params: params, rng: rand.New(rand.NewSource(seed))}
}

// Solve runs the GA over one cluster against depot, using distances from
// matrix, and returns the best chromosome found with its routes and
// fitness populated. Fitness evaluation across the population is
// parallelised via errgroup; the algorithm stays deterministic given a
// fixed seed
// because parallel workers only read the shared, immutable distance cache.
func (s *GASolver) Solve(ctx context.Context, depot Location, customers []Location, capacity float64, matrix *DistanceMatrixCache) (Chromosome, error) {
	if len(customers) == 0 {
		return Chromosome{}, apperrors.NewInvalidInputError("cannot solve a cluster with no customers")
	}

	population := s.initialPopulation(customers)
	if err := s.evaluatePopulation(ctx, population, depot, capacity, matrix); err != nil {
		return Chromosome{}, err
	}

	best := bestOf(population)
	stagnation := 0

	for gen := 0; gen < s.params.Generations; gen++ {
		offspring := s.reproduce(population)

		if err := s.evaluatePopulation(ctx, offspring, depot, capacity, matrix); err != nil {
			return Chromosome{}, err
		}

		population = s.elitistReplace(best, offspring)

		genBest := bestOf(population)
		if genBest.Fitness < best.Fitness {
			best = genBest
			stagnation = 0
		} else {
			stagnation++
			if stagnation >= s.params.Patience {
				break
			}
		}
	}

	if math.IsInf(best.TotalDistance, 1) {
		return Chromosome{}, apperrors.NewUnreachableError("no reachable route exists for this cluster")
	}

	return best, nil
}

func (s *GASolver) initialPopulation(customers []Location) []Chromosome {
	population := make([]Chromosome, s.params.PopulationSize)
	for i := range population {
		genes := make([]Location, len(customers))
		copy(genes, customers)
		s.rng.Shuffle(len(genes), func(a, b int) { genes[a], genes[b] = genes[b], genes[a] })
		population[i] = Chromosome{Genes: genes}
	}
	return population
}

// evaluatePopulation fills in Routes/TotalDistance/CapacityViolation/
// Fitness for every chromosome, in parallel.
func (s *GASolver) evaluatePopulation(ctx context.Context, population []Chromosome, depot Location, capacity float64, matrix *DistanceMatrixCache) error {
	g, _ := errgroup.WithContext(ctx)
	for i := range population {
		i := i
		g.Go(func() error {
			population[i] = evaluate(population[i], depot, capacity, matrix)
			return nil
		})
	}
	return g.Wait()
}

// evaluate splits genes into capacity-respecting sub-routes, computes
// total distance and capacity violation against matrix, and derives
// fitness as distance plus penalised overflow.
func evaluate(c Chromosome, depot Location, capacity float64, matrix *DistanceMatrixCache) Chromosome {
	c.Routes = splitIntoRoutes(c.Genes, capacity)

	var totalDistance, violation float64
	for _, route := range c.Routes {
		if len(route.Stops) == 0 {
			continue
		}
		prev := depot
		for _, stop := range route.Stops {
			totalDistance += matrix.Distance(prev.ID, stop.ID)
			prev = stop
		}
		totalDistance += matrix.Distance(prev.ID, depot.ID)

		if over := route.Demand() - capacity; over > 0 {
			violation += over
		}
	}

	c.TotalDistance = totalDistance
	c.CapacityViolation = violation
	c.Fitness = totalDistance + CapacityPenalty*violation
	return c
}

// splitIntoRoutes packs genes left-to-right into sub-routes: a gene joins
// the current sub-route unless doing so would exceed capacity, in which
// case a new sub-route starts. A single gene whose own demand exceeds
// capacity still becomes its own (overflowing) sub-route.
func splitIntoRoutes(genes []Location, capacity float64) []SubRoute {
	if len(genes) == 0 {
		return nil
	}

	var routes []SubRoute
	current := SubRoute{}
	var currentDemand float64

	for _, gene := range genes {
		if len(current.Stops) > 0 && currentDemand+gene.Demand > capacity {
			routes = append(routes, current)
			current = SubRoute{}
			currentDemand = 0
		}
		current.Stops = append(current.Stops, gene)
		currentDemand += gene.Demand
	}
	routes = append(routes, current)

	return routes
}

func bestOf(population []Chromosome) Chromosome {
	best := population[0]
	for _, c := range population[1:] {
		if c.Fitness < best.Fitness {
			best = c
		}
	}
	return best
}

// reproduce builds population_size offspring by tournament selection, OX1
// crossover, and swap mutation.
func (s *GASolver) reproduce(population []Chromosome) []Chromosome {
	parents := make([]Chromosome, len(population))
	for i := range parents {
		parents[i] = s.tournamentSelect(population)
	}

	offspring := make([]Chromosome, 0, len(parents))
	for i := 0; i < len(parents); i += 2 {
		p1 := parents[i]
		var p2 Chromosome
		if i+1 < len(parents) {
			p2 = parents[i+1]
		} else {
			p2 = parents[i]
		}

		var c1, c2 Chromosome
		if s.rng.Float64() < s.params.CrossoverRate {
			c1, c2 = s.orderedCrossover(p1, p2)
		} else {
			c1, c2 = p1.Clone(), p2.Clone()
		}

		s.mutate(&c1)
		s.mutate(&c2)

		offspring = append(offspring, c1, c2)
	}

	return offspring
}

// tournamentSelect samples tournament_size individuals with replacement
// and returns the one with minimum fitness.
func (s *GASolver) tournamentSelect(population []Chromosome) Chromosome {
	best := population[s.rng.Intn(len(population))]
	for i := 1; i < s.params.TournamentSize; i++ {
		candidate := population[s.rng.Intn(len(population))]
		if candidate.Fitness < best.Fitness {
			best = candidate
		}
	}
	return best
}

// orderedCrossover implements OX1: a random cut [start, end) is copied
// verbatim from each parent into the corresponding child; the remaining
// positions are filled, in relative order, from the other parent's genes
// not already present.
func (s *GASolver) orderedCrossover(p1, p2 Chromosome) (Chromosome, Chromosome) {
	size := len(p1.Genes)
	a := s.rng.Intn(size + 1)
	b := s.rng.Intn(size + 1)
	start, end := a, b
	if start > end {
		start, end = end, start
	}

	return ox1Child(p1.Genes, p2.Genes, start, end), ox1Child(p2.Genes, p1.Genes, start, end)
}

func ox1Child(primary, secondary []Location, start, end int) Chromosome {
	size := len(primary)
	child := make([]Location, size)
	taken := make(map[uint64]bool, size)

	for i := start; i < end; i++ {
		child[i] = primary[i]
		taken[primary[i].ID] = true
	}

	fill := make([]Location, 0, size-(end-start))
	for _, gene := range secondary {
		if !taken[gene.ID] {
			fill = append(fill, gene)
		}
	}

	pos := end % size
	for _, gene := range fill {
		for pos >= start && pos < end {
			pos = (pos + 1) % size
		}
		child[pos] = gene
		pos = (pos + 1) % size
	}

	return Chromosome{Genes: child}
}

// mutate applies swap mutation: with probability mutation_rate, swap two
// distinct randomly chosen indices. No-op if the chromosome has fewer than
// two genes.
func (s *GASolver) mutate(c *Chromosome) {
	if len(c.Genes) < 2 {
		return
	}
	if s.rng.Float64() >= s.params.MutationRate {
		return
	}
	i := s.rng.Intn(len(c.Genes))
	j := s.rng.Intn(len(c.Genes))
	for j == i {
		j = s.rng.Intn(len(c.Genes))
	}
	c.Genes[i], c.Genes[j] = c.Genes[j], c.Genes[i]
}

// elitistReplace copies incumbent verbatim into slot 0 and fills the
// remaining population_size-1 slots from the front of offspring,
// discarding any excess.
func (s *GASolver) elitistReplace(incumbent Chromosome, offspring []Chromosome) []Chromosome {
	next := make([]Chromosome, s.params.PopulationSize)
	next[0] = incumbent
	for i := 1; i < s.params.PopulationSize; i++ {
		next[i] = offspring[i-1]
	}
	return next
}
