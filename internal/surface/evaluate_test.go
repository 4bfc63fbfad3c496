package surface_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/surface"
)

// recorder is a metric double that remembers every assignment it receives.
type recorder struct {
	calls []map[string]float64
}

func (r *recorder) fn(values map[string]float64) float64 {
	cp := make(map[string]float64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	r.calls = append(r.calls, cp)
	return values["a"] + values["b"]
}

var _ = Describe("Evaluate", func() {
	params := domain.ParameterSet{
		{Name: "a", Low: 0, High: 10},
		{Name: "b", Low: 0, High: 10},
		{Name: "c", Low: -4, High: 2},
	}

	var rec *recorder

	BeforeEach(func() {
		rec = &recorder{}
	})

	Context("with one selected parameter", func() {
		It("samples the range and fixes the others at their midpoint", func() {
			res, err := surface.Evaluate(rec.fn, params, surface.Selection{"a"}, nil, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Dims()).To(Equal(1))
			Expect(res.Curve.X).To(Equal([]float64{0, 5, 10}))
			Expect(res.Curve.Y).To(Equal([]float64{5, 10, 15}))

			Expect(rec.calls).To(HaveLen(3))
			for _, args := range rec.calls {
				Expect(args).To(HaveLen(len(params)))
				Expect(args["b"]).To(Equal(5.0))
				Expect(args["c"]).To(Equal(-1.0))
			}
		})

		It("returns N samples for any N", func() {
			for _, n := range []int{1, 2, 7, 100} {
				res, err := surface.Evaluate(rec.fn, params, surface.Selection{"c"}, nil, n)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Curve.X).To(HaveLen(n))
				Expect(res.Curve.Y).To(HaveLen(n))
			}
		})

		It("uses the low bound when N is 1", func() {
			res, err := surface.Evaluate(rec.fn, params, surface.Selection{"a"},
				map[string]surface.Range{"a": {Low: 2, High: 8}}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Curve.X).To(Equal([]float64{2}))
		})

		It("fixes others at the parameter set midpoint, not the override", func() {
			_, err := surface.Evaluate(rec.fn, params, surface.Selection{"a"},
				map[string]surface.Range{"a": {Low: 1, High: 2}, "b": {Low: 0, High: 1}}, 4)
			Expect(err).NotTo(HaveOccurred())
			for _, args := range rec.calls {
				Expect(args["b"]).To(Equal(5.0))
			}
		})
	})

	Context("with two selected parameters", func() {
		It("produces N×N grids laid out like a meshgrid", func() {
			n := 4
			res, err := surface.Evaluate(rec.fn, params, surface.Selection{"a", "c"}, nil, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Dims()).To(Equal(2))

			s := res.Surface
			for _, grid := range [][][]float64{s.X, s.Y, s.Z} {
				Expect(grid).To(HaveLen(n))
				for _, row := range grid {
					Expect(row).To(HaveLen(n))
				}
			}
			Expect(rec.calls).To(HaveLen(n * n))

			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					Expect(s.X[i][j]).To(Equal(s.X[0][j]))
					Expect(s.Y[i][j]).To(Equal(s.Y[i][0]))
					want := rec.fn(map[string]float64{"a": s.X[i][j], "b": 5, "c": s.Y[i][j]})
					Expect(s.Z[i][j]).To(Equal(want))
				}
			}
		})

		It("does not crash for N of 1 and 2", func() {
			for _, n := range []int{1, 2} {
				res, err := surface.Evaluate(rec.fn, params, surface.Selection{"a", "b"}, nil, n)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Surface.Z).To(HaveLen(n))
			}
		})
	})

	Context("with an invalid selection", func() {
		DescribeTable("reports guidance without computing",
			func(sel surface.Selection, message string) {
				res, err := surface.Evaluate(rec.fn, params, sel, nil, 5)
				Expect(res).To(BeNil())
				Expect(surface.IsGuidance(err)).To(BeTrue())
				Expect(surface.Guidance(err)).To(Equal(message))
				Expect(rec.calls).To(BeEmpty())
			},
			Entry("no variables", surface.Selection{}, surface.EmptySelectionGuidance),
			Entry("three variables", surface.Selection{"a", "b", "c"}, surface.SelectionGuidance),
			Entry("same variable twice", surface.Selection{"a", "a"}, surface.SelectionGuidance),
		)
	})

	Context("with bad arguments", func() {
		It("rejects unknown parameters", func() {
			_, err := surface.Evaluate(rec.fn, params, surface.Selection{"z"}, nil, 3)
			Expect(errors.Is(err, surface.ErrUnknownParameter)).To(BeTrue())
		})

		It("rejects overrides outside the allowed interval", func() {
			_, err := surface.Evaluate(rec.fn, params, surface.Selection{"a"},
				map[string]surface.Range{"a": {Low: -1, High: 5}}, 3)
			Expect(errors.Is(err, surface.ErrRangeOutOfBounds)).To(BeTrue())
			Expect(surface.IsGuidance(err)).To(BeFalse())
		})

		It("rejects a sample count below 1", func() {
			_, err := surface.Evaluate(rec.fn, params, surface.Selection{"a"}, nil, 0)
			Expect(errors.Is(err, surface.ErrInvalidSampleCount)).To(BeTrue())
		})
	})

	It("is deterministic", func() {
		d := domain.NewBiological()
		m, err := d.Metric(domain.MetricBioQuality)
		Expect(err).NotTo(HaveOccurred())

		first, err := surface.Evaluate(m.Fn, d.Parameters, surface.Selection{"pH", "Glucosa"}, nil, 25)
		Expect(err).NotTo(HaveOccurred())
		second, err := surface.Evaluate(m.Fn, d.Parameters, surface.Selection{"pH", "Glucosa"}, nil, 25)
		Expect(err).NotTo(HaveOccurred())

		a, b := first.Values(), second.Values()
		Expect(a).To(HaveLen(len(b)))
		for i := range a {
			Expect(math.Float64bits(a[i])).To(Equal(math.Float64bits(b[i])))
		}
	})
})
