package spatialmath

import "gonum.org/v1/gonum/mat"

// RotationOf extracts the 3×3 rotation block from a 4×4 homogeneous transform.
func RotationOf(h *mat.Dense) *mat.Dense {
	r := mat.NewDense(3, 3, nil)
	r.Copy(h.Slice(0, 3, 0, 3))
	return r
}

// TranslationOf extracts the translation column from a 4×4 homogeneous transform.
func TranslationOf(h *mat.Dense) *mat.VecDense {
	return mat.NewVecDense(3, []float64{h.At(0, 3), h.At(1, 3), h.At(2, 3)})
}

// TransformPoint applies a 4×4 homogeneous transform to a 3-D point.
func TransformPoint(h *mat.Dense, p *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(3, nil)
	out.MulVec(RotationOf(h), p)
	out.AddVec(out, TranslationOf(h))
	return out
}
