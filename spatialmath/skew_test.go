package spatialmath

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestSkew(t *testing.T) {
	a := mat.NewVecDense(3, []float64{1, -2, 3})
	b := mat.NewVecDense(3, []float64{-4, 5, 0.5})

	cross := mat.NewVecDense(3, nil)
	cross.MulVec(Skew(a), b)

	// a × b computed componentwise.
	test.That(t, cross.AtVec(0), test.ShouldAlmostEqual, a.AtVec(1)*b.AtVec(2)-a.AtVec(2)*b.AtVec(1))
	test.That(t, cross.AtVec(1), test.ShouldAlmostEqual, a.AtVec(2)*b.AtVec(0)-a.AtVec(0)*b.AtVec(2))
	test.That(t, cross.AtVec(2), test.ShouldAlmostEqual, a.AtVec(0)*b.AtVec(1)-a.AtVec(1)*b.AtVec(0))

	s := Skew(a)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			test.That(t, s.At(i, j), test.ShouldEqual, -s.At(j, i))
		}
	}
}

func TestTransformPoint(t *testing.T) {
	// 90° rotation about z plus a translation.
	h := mat.NewDense(4, 4, []float64{
		0, -1, 0, 1,
		1, 0, 0, 2,
		0, 0, 1, -3,
		0, 0, 0, 1,
	})
	p := TransformPoint(h, mat.NewVecDense(3, []float64{1, 0, 0.5}))
	test.That(t, p.AtVec(0), test.ShouldAlmostEqual, 1)
	test.That(t, p.AtVec(1), test.ShouldAlmostEqual, 3)
	test.That(t, p.AtVec(2), test.ShouldAlmostEqual, -2.5)

	rot := RotationOf(h)
	test.That(t, rot.At(0, 1), test.ShouldEqual, -1)
	trans := TranslationOf(h)
	test.That(t, trans.AtVec(2), test.ShouldEqual, -3)
}
