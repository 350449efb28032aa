// Package gridevo evolves populations of simple agents on a two-dimensional
// grid.
//
// Every agent is driven by a small layered neural network whose weights are
// encoded in a base-36 genome. Agents sense their position and surroundings,
// move around the shared grid for a fixed number of ticks, and the ones that
// end the generation inside a fitness region breed the next generation by
// crossover and mutation. There is no training: behaviour improves only by
// selection.
//
// The networks propagate incrementally. Changing an input or a weight only
// recomputes the nodes it actually affects, and a contribution that did not
// change stops the propagation right there.
//
// The library lives in the evo package, the networks in evo/nn and a
// Prometheus observer in evo/metrics. examples/gridevo is a runnable driver.
//
// Basic usage:
//
//	// Load configuration
//	config, err := evo.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	pop, err := evo.NewPopulation(config)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run for 100 generations
//	for i := 0; i < 100; i++ {
//		result, err := pop.RunGeneration(ctx)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//		fmt.Printf("generation %d: %.2f survived\n", result.Generation, result.SurvivalRatio)
//	}
package gridevo
