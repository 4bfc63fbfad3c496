// Package surface evaluates closed-form metric functions over a sampling grid.
//
// [Evaluate] varies one or two selected parameters across a range while every
// other parameter is held at the midpoint of its allowed interval:
//
//	res, err := surface.Evaluate(metric.Fn, d.Parameters, surface.Selection{"Temp"}, nil, 50)
//	if surface.IsGuidance(err) {
//	    fmt.Println(surface.Guidance(err))
//	}
//
// One variable yields a [Curve]; two yield an N×N [Surface] laid out like a
// meshgrid: X varies along columns, Y along rows.
//
// Evaluation is pure. Identical arguments produce bit-identical results.
package surface
