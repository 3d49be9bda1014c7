// Package viz draws particle snapshots and energy summaries in the terminal.
//
//   - [Canvas]: braille pixel canvas with one colour per character cell
//   - [Camera]: rotation and perspective projection of particle positions
//   - [RenderParticles]: projects a particle array onto a canvas, colouring
//     each cell with the colour of the nearest particle drawn into it
package viz
