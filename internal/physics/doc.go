// Package physics provides the gravitating point masses of the simulation.
//
// The package defines the per-body state and the pairwise force law:
//
//   - [Body]: a point mass with position, velocity, display attributes and a trail
//   - [Trail]: fixed-capacity ring buffer of past positions
//   - [Gravity]: Newtonian inverse-square attraction with an optional minimum separation
//
// All vectors are [r2.Vec] values in SI units (metres, metres per second).
//
// # Anchor Distance
//
// A body flagged as the anchor (conventionally the star) is the reference for
// "distance to primary". [Body.Attraction] records that distance as a side effect
// whenever the other body is the anchor; it has no effect on the dynamics.
//
//	sun, _ := physics.NewBody(physics.Params{Name: "sun", Mass: physics.SunMass, Anchor: true, TrailCapacity: 1})
//	f, err := earth.Attraction(sun, physics.DefaultGravity())
//	fmt.Println(earth.DistanceToAnchor() / physics.AU)
package physics
