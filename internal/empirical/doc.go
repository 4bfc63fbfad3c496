// Package empirical turns small tables of historical observations into smooth
// curves and surfaces.
//
// A single variable is fitted with a least-squares polynomial of degree at
// most 3 ([PolyFit]). Two variables are interpolated onto a regular grid with
// a cubic radial basis ([NewCubicRBF]) restricted to the convex hull of the
// samples; cells outside the hull carry NaN and report !Defined.
//
// Insufficient data never panics: curves come back empty and surfaces come
// back flagged NoData.
package empirical
