// Package simulation turns a customer population and a vehicle inventory
// into the behavioral event stream and its funnel outcomes.
//
// A Simulator repeatedly samples a customer and plays one visit through the
// funnel stages: identification, baseline browsing, vehicle browsing,
// pre-qualification, lead and purchase. Each stage is entered on a Bernoulli
// draw whose probability comes from the outcome package. The loop stops once
// the event count reaches the target, so the final count may overshoot by up
// to one visit.
//
// Usage:
//
//	sim, err := simulation.New(simulation.Config{
//	    Days:        7,
//	    EventTarget: 500,
//	    End:         asOf,
//	}, customers, vehicles, assigner, src.Derive(simulation.Stream))
//	if err != nil {
//	    return err
//	}
//	result, err := sim.Run()
//
// CheckInvariants verifies the cross-table guarantees on any dataset.
package simulation
