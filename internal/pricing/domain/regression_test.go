package domain

import (
	"math"
	"testing"
)

func TestFitQuadraticExact(t *testing.T) {
	tests := []struct {
		name    string
		x, y    []float64
		a, b, c float64
	}{
		{
			name: "pure square",
			x:    []float64{1, 2, 3, 4},
			y:    []float64{1, 4, 9, 16},
			a:    1, b: 0, c: 0,
		},
		{
			name: "shifted parabola",
			x:    []float64{0, 1, 2},
			y:    []float64{1, 0, 1},
			a:    1, b: -2, c: 1,
		},
		{
			name: "affine data",
			x:    []float64{-2, -1, 0, 1, 2},
			y:    []float64{-3, -1, 1, 3, 5},
			a:    0, b: 2, c: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := fitQuadratic(tt.x, tt.y)
			if !closeTo(model.A, tt.a, 1e-9) || !closeTo(model.B, tt.b, 1e-9) || !closeTo(model.C, tt.c, 1e-9) {
				t.Errorf("fitQuadratic() = (%.12f, %.12f, %.12f), want (%v, %v, %v)",
					model.A, model.B, model.C, tt.a, tt.b, tt.c)
			}
		})
	}
}

func TestFitQuadraticLeastSquares(t *testing.T) {
	// 过定样本：y = x² 加对称扰动 ±1，最小二乘仍应收敛到 y = x²
	x := []float64{-2, -1, 0, 1, 2, -2, -1, 0, 1, 2}
	y := []float64{5, 2, 1, 2, 5, 3, 0, -1, 0, 3}

	model := fitQuadratic(x, y)
	if !closeTo(model.A, 1, 1e-9) || !closeTo(model.B, 0, 1e-9) || !closeTo(model.C, 0, 1e-9) {
		t.Errorf("fitQuadratic() = (%.12f, %.12f, %.12f), want (1, 0, 0)", model.A, model.B, model.C)
	}
}

func TestFitQuadraticDegenerate(t *testing.T) {
	// 全部样本共享同一个 x 时正规方程组奇异。样本取 2 的幂，
	// 消元中的抵消保持精确，奇异路径稳定落入 0/0，系数确定为 NaN；
	// 引擎侧 intrinsic > NaN 恒为假，行权决策退化为持有到期
	model := fitQuadratic([]float64{128, 128, 128, 128}, []float64{5, 5, 5, 5})
	if !math.IsNaN(model.ValueAt(128)) {
		t.Errorf("ValueAt(128) = %v, want NaN for a singular system", model.ValueAt(128))
	}
}

func TestPolynomialModelValueAt(t *testing.T) {
	model := PolynomialModel{A: 2, B: -3, C: 0.5}
	if got, want := model.ValueAt(2), 2*4.0-3*2+0.5; !closeTo(got, want, 1e-12) {
		t.Errorf("ValueAt(2) = %v, want %v", got, want)
	}
}
