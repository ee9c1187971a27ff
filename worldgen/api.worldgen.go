// Package worldgen reads and writes .hkb world descriptions.
//
// A .hkb file is line oriented; blank lines and lines starting with '#' are skipped:
//
//	b <c> x y z -> x y z                       branch of color c (r, g, b) between two nodes
//	s <c> x y z :: dx dy dz <step> [num den]   the node at x y z anchors a chain along (dx, dy, dz)
//
// Nodes are identified by position.  A chain of color r, g, or b without num den is uniform.  With
// num den, den == 0 colors a uniform chain by the sign of num, a power of two den gives a terminating
// chain, and any other den gives the repeating chain for num/den.  Step is g (geometric) or l (linear).
package worldgen

// Line is one parsed .hkb statement.
type Line struct {
	Branch *BranchLine `parser:"  @@"`
	Chain  *ChainLine  `parser:"| @@"`
}

type BranchLine struct {
	Color string `parser:"\"b\" @Ident"`
	From  Vec    `parser:"@@ \"->\""`
	To    Vec    `parser:"@@"`
}

type ChainLine struct {
	Color string    `parser:"\"s\" @Ident"`
	At    Vec       `parser:"@@ \"::\""`
	Dir   Vec       `parser:"@@"`
	Step  string    `parser:"@Ident"`
	Frac  *Fraction `parser:"@@?"`
}

type Fraction struct {
	Num int64 `parser:"@Number"`
	Den int64 `parser:"@Number"`
}

type Vec struct {
	X float64 `parser:"@Number"`
	Y float64 `parser:"@Number"`
	Z float64 `parser:"@Number"`
}

// GenOpts parameterizes Generate.  Counts and density are means of normal distributions.
type GenOpts struct {
	Seed               int64
	XZRadius           float64
	YMin, YMax         float64
	GroundedNodes      float64
	TotalNodes         float64
	Density            float64
	GroundDensityRatio float64
	BlueRatio          float64
	RedRatio           float64
	NodeNoise          float64
	DensityNoise       float64
}

func DefaultGenOpts() GenOpts {
	return GenOpts{
		Seed:               1,
		XZRadius:           10,
		YMin:               2,
		YMax:               10,
		GroundedNodes:      5,
		TotalNodes:         20,
		Density:            2,
		GroundDensityRatio: 1,
		BlueRatio:          0.4,
		RedRatio:           0.4,
		NodeNoise:          2,
		DensityNoise:       2,
	}
}
