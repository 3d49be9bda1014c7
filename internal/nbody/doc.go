// Package nbody simulates point masses under mutual gravitational attraction.
//
// A [Simulation] owns a fixed-size particle array and the scalar state of
// one run. The lifecycle is:
//
//   - [Simulation.Init]: generate a seeded particle array and capture the
//     baseline energy
//   - [Simulation.Tick]: advance one step of length dt
//   - [Simulation.Save] / [Simulation.Load]: snapshot or restore the whole store
//   - [Simulation.Destroy]: release the array
//
// # Time step
//
// Each tick runs two data-parallel phases separated by a barrier. Phase A
// kicks and drifts every particle with its previous acceleration. Phase B
// recomputes accelerations with a dense O(n²) pairwise loop that averages
// the softened force at the current separation with the force at a
// separation predicted one step ahead.
//
// # Views
//
// [Simulation.Particles] returns the live array. The slice is invalidated
// by Init, Load and Destroy, which swap in a new array; callers must fetch
// it again afterwards and must not touch it while a tick is running.
package nbody
