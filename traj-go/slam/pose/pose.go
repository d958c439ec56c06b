package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pose is a rigid transform: a 3x3 rotation and a translation vector.
type Pose struct {
	R *mat.Dense
	T *mat.VecDense
}

// New builds a Pose from XYZ euler angles (radians) and a translation.
func New(eulerX, eulerY, eulerZ, tX, tY, tZ float64) Pose {
	return Pose{
		R: RotationFromEuler(eulerX, eulerY, eulerZ),
		T: mat.NewVecDense(3, []float64{tX, tY, tZ}),
	}
}

// Identity returns the identity transform.
func Identity() Pose {
	r := mat.NewDense(3, 3, nil)
	r.Set(0, 0, 1)
	r.Set(1, 1, 1)
	r.Set(2, 2, 1)
	return Pose{R: r, T: mat.NewVecDense(3, nil)}
}

// Compose returns p followed by q: R = Rp*Rq, t = Rp*tq + tp.
func (p Pose) Compose(q Pose) Pose {
	r := mat.NewDense(3, 3, nil)
	r.Mul(p.R, q.R)

	t := mat.NewVecDense(3, nil)
	t.MulVec(p.R, q.T)
	t.AddVec(t, p.T)

	return Pose{R: r, T: t}
}

// Inverse returns the transform q such that p.Compose(q) is identity.
func (p Pose) Inverse() Pose {
	r := mat.NewDense(3, 3, nil)
	r.CloneFrom(p.R.T())

	t := mat.NewVecDense(3, nil)
	t.MulVec(r, p.T)
	t.ScaleVec(-1, t)

	return Pose{R: r, T: t}
}

// Delta returns the relative motion from p to q: p^-1 * q.
func (p Pose) Delta(q Pose) Pose {
	return p.Inverse().Compose(q)
}

// Euler decomposes the rotation back into XYZ euler angles (radians).
func (p Pose) Euler() (x, y, z float64) {
	return EulerFromRotation(p.R)
}

// Translation returns the translation components.
func (p Pose) Translation() (x, y, z float64) {
	return p.T.AtVec(0), p.T.AtVec(1), p.T.AtVec(2)
}

// TranslationNorm returns the euclidean norm of the translation.
func (p Pose) TranslationNorm() float64 {
	return mat.Norm(p.T, 2)
}

// RotationAngle returns the magnitude of the rotation in radians,
// derived from the trace of the rotation matrix.
func (p Pose) RotationAngle() float64 {
	tr := p.R.At(0, 0) + p.R.At(1, 1) + p.R.At(2, 2)
	c := (tr - 1) / 2
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// RotationFromEuler builds a rotation matrix R = Rz*Ry*Rx from XYZ
// euler angles in radians.
func RotationFromEuler(x, y, z float64) *mat.Dense {
	sx, cx := math.Sincos(x)
	sy, cy := math.Sincos(y)
	sz, cz := math.Sincos(z)

	return mat.NewDense(3, 3, []float64{
		cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx,
		sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx,
		-sy, cy * sx, cy * cx,
	})
}

// EulerFromRotation recovers XYZ euler angles from a rotation matrix.
// At the gimbal-lock singularity (|r20| == 1) the x angle is pinned to
// zero and the remaining rotation is folded into z.
func EulerFromRotation(r mat.Matrix) (x, y, z float64) {
	r20 := r.At(2, 0)
	if r20 > 1 {
		r20 = 1
	} else if r20 < -1 {
		r20 = -1
	}
	y = math.Asin(-r20)
	if math.Abs(r20) < 1-1e-9 {
		x = math.Atan2(r.At(2, 1), r.At(2, 2))
		z = math.Atan2(r.At(1, 0), r.At(0, 0))
	} else {
		x = 0
		z = math.Atan2(-r.At(0, 1), r.At(1, 1))
	}
	return x, y, z
}
