// Package force implements the subset-aware force simulation behind the
// network diagram.
//
// The model follows the velocity-Verlet scheme popularised by d3-force:
// every [Simulation.Tick] cools alpha, accumulates link, charge and collision
// forces into node velocities, then applies velocity decay and moves nodes.
//
// # Pinning
//
// Only nodes listed in the free set move. All other nodes are pinned at
// their starting coordinates with zero velocity; they exert no charge and
// have no collision radius, so the free subset settles around them without
// pushing them. Links whose endpoints are both pinned are dropped entirely.
//
// # Typed Forces
//
// Link distance and strength depend on the edge kind (provider→technique
// links are long and loose, category→technique links short and stiff);
// charge and collision radius depend on the node kind. See [Config].
//
// # Driving
//
// The simulation never runs on its own. Call [Simulation.Tick] from an
// external loop (an animation frame, an HTTP handler) or use
// [Simulation.Run] to step until alpha drops below [Config.AlphaMin].
//
// Randomness is limited to separating coincident points and is seeded, so
// two simulations with the same inputs produce the same trajectory.
package force
