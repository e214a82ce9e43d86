package stats

import "gonum.org/v1/gonum/stat/distuv"

// JarqueBera computes the Jarque-Bera normality test statistic and its
// p-value under the chi-squared(2) null distribution, from the skewness and
// excess kurtosis already tracked by Moments. Used to attach the numeric
// "approximately normal"/"not normal" note at finalize (spec.md §4.5 numeric
// stats is silent on distribution shape; this supplements it).
func JarqueBera(skewness, kurtosis float64, n uint64) (stat, pvalue float64) {
	if n < 8 {
		return 0, 1
	}
	nf := float64(n)
	stat = nf / 6 * (skewness*skewness + kurtosis*kurtosis/4)
	chi2 := distuv.ChiSquared{K: 2}
	pvalue = 1 - chi2.CDF(stat)
	return stat, pvalue
}

// NormalityNote renders JarqueBera's result as a human-readable profile
// note, or "" when there isn't enough data to judge (n < 8).
func NormalityNote(skewness, kurtosis float64, n uint64) string {
	if n < 8 {
		return ""
	}
	_, p := JarqueBera(skewness, kurtosis, n)
	if p < 0.05 {
		return "distribution: not normal (Jarque-Bera p < 0.05)"
	}
	return "distribution: approximately normal (Jarque-Bera p >= 0.05)"
}
