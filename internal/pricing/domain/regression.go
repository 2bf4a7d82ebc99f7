package domain

import "math"

// PolynomialModel 二次最小二乘拟合得到的延续价值模型 v(x) = a·x² + b·x + c
type PolynomialModel struct {
	A, B, C float64
}

// ValueAt 求模型在 x 处的延续价值
func (m PolynomialModel) ValueAt(x float64) float64 {
	return m.A*x*x + m.B*x + m.C
}

// fitQuadratic 对 (x, y) 样本做二次多项式最小二乘拟合。
// 先单趟累加 x 的 0~4 阶幂和与 y、x·y、x²·y 的叉和，组装 3×3
// 正规方程组，带部分主元的高斯消元后回代求解。
// 不检测退化输入：样本过少或 x 取值重复时正规方程组奇异，
// 系数可能为 NaN 或量级异常，调用方只保证样本集非空；
// 行权比较对 NaN 延续价值恒为假，决策自然退化为不提前行权。
func fitQuadratic(x, y []float64) PolynomialModel {
	var sx, sy, sxx, sxy, sxxx, sxxy, sxxxx float64
	for i := range x {
		xi, yi := x[i], y[i]
		xi2 := xi * xi
		sx += xi
		sy += yi
		sxx += xi2
		sxy += xi * yi
		sxxx += xi2 * xi
		sxxy += xi2 * yi
		sxxxx += xi2 * xi2
	}

	a := [3][3]float64{
		{float64(len(x)), sx, sxx},
		{sx, sxx, sxxx},
		{sxx, sxxx, sxxxx},
	}
	b := [3]float64{sy, sxy, sxxy}

	// 部分主元消元：每列选绝对值最大的主元行交换后向下消去
	for i := 0; i < 3; i++ {
		pivot := i
		for j := i + 1; j < 3; j++ {
			if math.Abs(a[j][i]) > math.Abs(a[pivot][i]) {
				pivot = j
			}
		}
		a[i], a[pivot] = a[pivot], a[i]
		b[i], b[pivot] = b[pivot], b[i]
		for j := i + 1; j < 3; j++ {
			factor := a[j][i] / a[i][i]
			for k := i; k < 3; k++ {
				a[j][k] -= factor * a[i][k]
			}
			b[j] -= factor * b[i]
		}
	}

	// 回代，系数按常数项到最高次排列
	var coef [3]float64
	for i := 2; i >= 0; i-- {
		sum := 0.0
		for j := i + 1; j < 3; j++ {
			sum += a[i][j] * coef[j]
		}
		coef[i] = (b[i] - sum) / a[i][i]
	}

	return PolynomialModel{A: coef[2], B: coef[1], C: coef[0]}
}
