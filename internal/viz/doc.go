// Package viz draws snapshots of a disk run in the terminal.
//
// The package is built in layers:
//
//   - [Canvas]: braille sub-pixel overlay for planets, orbits and Roche lobes
//   - [Renderer]: rasterizes the polar field of a snapshot into a [Frame]
//   - [Player]: bubbletea timeline player driven by the catalog's
//     data-updated notification
//
// Frames can also be written as GIF animations or SVG images.
//
// # Key Bindings
//
//	Space     - Play/Pause
//	←/→       - Previous/next timestep
//	↑/↓       - Jump forward/back
//	Home/End  - First/last timestep
//	c         - Cycle quantity
//	t         - Cycle color themes
//	G         - Toggle GIF recording
//	?         - Show help overlay
package viz
