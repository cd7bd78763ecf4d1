package initwfn

import G "gorgonia.org/gorgonia"

// GlorotConfig implements a configuration of the Glorot uniform and
// normal initialization algorithms.
type GlorotConfig struct {
	Gain   float64
	Normal bool
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotConfig) Type() Type {
	if g.Normal {
		return GlorotN
	}
	return GlorotU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotConfig) Create() G.InitWFn {
	if g.Normal {
		return G.GlorotN(g.Gain)
	}
	return G.GlorotU(g.Gain)
}

// HeConfig implements a configuration of the He uniform and normal
// initialization algorithms.
type HeConfig struct {
	Gain   float64
	Normal bool
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeConfig) Type() Type {
	if h.Normal {
		return HeN
	}
	return HeU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (h HeConfig) Create() G.InitWFn {
	if h.Normal {
		return G.HeN(h.Gain)
	}
	return G.HeU(h.Gain)
}

// GaussianConfig implements a configuration of a weight initializer
// that draws weights from a zero-mean gaussian distribution
type GaussianConfig struct {
	StdDev float64
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GaussianConfig) Type() Type {
	return Gaussian
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GaussianConfig) Create() G.InitWFn {
	return G.Gaussian(0, g.StdDev)
}

// ZeroesConfig implements a configuration of a zero weight initializer
type ZeroesConfig struct{}

// Type returns the type of the weight initializer created using this
// config
func (z ZeroesConfig) Type() Type {
	return Zeroes
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (z ZeroesConfig) Create() G.InitWFn {
	return G.Zeroes()
}
