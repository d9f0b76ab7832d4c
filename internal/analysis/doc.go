// Package analysis reduces a loaded disk field to numbers and curves.
//
// The field is the collocated (NRadial+1) x NAzimuthal grid returned by
// fargo.Catalog.Quantity, ordered by radial index:
//
//   - [FieldStats]: minimum, maximum, mean and spread of the whole field
//   - [RadialProfile]: azimuthal average of every ring
//   - [AzimuthalModes]: Fourier decomposition of one ring
//   - [ModeProfile]: strength of one azimuthal mode across all rings
//   - [DiskMass]: surface density integrated over the grid
//
// # Example
//
//	profile := analysis.RadialProfile(cat.Quantity(), cat.NAzimuthal())
//	modes, _ := analysis.AzimuthalModes(analysis.Ring(cat.Quantity(), cat.NAzimuthal(), 40), 4)
package analysis
