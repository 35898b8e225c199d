package bootstrap

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"goplsc/domain/plsc"
)

// summarize reduces the accumulated per-draw statistics to mean, standard
// deviation, and the empirical [2.5%, 97.5%] interval across the draw axis,
// and derives bootstrap ratios for the observed saliences.
func (e *Estimator) summarize(draws []drawResult, obs plsc.Decomposition, cfg Config) (*plsc.BootstrapSummary, error) {
	uStats := reduce(draws, func(d drawResult) *mat.Dense { return d.u })
	vStats := reduce(draws, func(d drawResult) *mat.Dense { return d.v })

	summary := &plsc.BootstrapSummary{
		USaliences:      uStats,
		VSaliences:      vStats,
		ImagingScores:   reduce(draws, func(d drawResult) *mat.Dense { return d.lx }),
		DesignScores:    reduce(draws, func(d drawResult) *mat.Dense { return d.ly }),
		ImagingLoadings: reduce(draws, func(d drawResult) *mat.Dense { return d.imgLoad }),
		DesignLoadings:  reduce(draws, func(d drawResult) *mat.Dense { return d.dLoad }),
		BootstrapRatioU: ratios(obs.U, uStats.Std),
		BootstrapRatioV: ratios(obs.V, vStats.Std),
		NumDraws:        len(draws),
	}

	if cfg.SaveRaw {
		summary.RawU = make([]*mat.Dense, len(draws))
		summary.RawV = make([]*mat.Dense, len(draws))
		for i, d := range draws {
			summary.RawU[i] = d.u
			summary.RawV[i] = d.v
		}
	}

	return summary, nil
}

// reduce computes elementwise summary statistics across draws
func reduce(draws []drawResult, get func(drawResult) *mat.Dense) plsc.BootstrapStats {
	first := get(draws[0])
	r, c := first.Dims()

	out := plsc.BootstrapStats{
		Mean:  mat.NewDense(r, c, nil),
		Std:   mat.NewDense(r, c, nil),
		Lower: mat.NewDense(r, c, nil),
		Upper: mat.NewDense(r, c, nil),
	}

	sample := make([]float64, len(draws))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			for k := range draws {
				sample[k] = get(draws[k]).At(i, j)
			}

			mean, _ := stats.Mean(sample)
			sd, _ := stats.StandardDeviationSample(sample)
			lower, _ := stats.Percentile(sample, 2.5)
			upper, _ := stats.Percentile(sample, 97.5)

			out.Mean.Set(i, j, mean)
			out.Std.Set(i, j, sd)
			out.Lower.Set(i, j, lower)
			out.Upper.Set(i, j, upper)
		}
	}
	return out
}

// ratios divides observed saliences by their bootstrap standard deviation;
// entries with zero standard deviation are reported as 0.
func ratios(observed, std *mat.Dense) *mat.Dense {
	r, c := observed.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if sd := std.At(i, j); sd > 0 {
				out.Set(i, j, observed.At(i, j)/sd)
			}
		}
	}
	return out
}
