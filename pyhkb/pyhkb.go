package pyhkb

import (
	"strings"

	"github.com/go-python/gpython/py"
	"github.com/hkb3d/gohkb/gohkb"
	"github.com/hkb3d/gohkb/libhkb"
	"github.com/hkb3d/gohkb/worldgen"
)

var (
	LIB_VERSION = "v1.2026.1"
)

// Prelude binds the module as "hkb"; hosts run it ahead of user source.
const Prelude = "import _pyhkb as hkb\n"

var (
	pyWorldType = py.NewType("World", "a Hackenbush world of ordinary nodes and chains")
)

// pyWorld retains the edges of the last query so scripts can chop them by index.
type pyWorld struct {
	*libhkb.World
	last []*gohkb.Edge
}

func (W *pyWorld) Type() *py.Type {
	return pyWorldType
}

func (W *pyWorld) M__str__() (py.Object, error) {
	var b strings.Builder
	if err := W.Log(&b, 1); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.String(b.String()), nil
}

func (W *pyWorld) M__repr__() (py.Object, error) {
	return W.M__str__()
}

func py_NewWorld(module py.Object, args py.Tuple) (py.Object, error) {
	return &pyWorld{World: libhkb.NewWorld(libhkb.DefaultConfig())}, nil
}

// Arg 1 (int): order
// Arg 2 (int): numerator
// Arg 3 (int): denominator
func py_FractionBranch(module py.Object, args py.Tuple) (py.Object, error) {
	var order, num, den int64
	if err := py.LoadTuple(args, []interface{}{&order, &num, &den}); err != nil {
		return nil, err
	}
	if err := libhkb.ValidateFraction(num, den); err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Int(libhkb.FractionBranch(order, num, den)), nil
}

// Arg 1 (int): numerator
// Arg 2 (int): denominator
func py_FractionExpansion(module py.Object, args py.Tuple) (py.Object, error) {
	var num, den int64
	if err := py.LoadTuple(args, []interface{}{&num, &den}); err != nil {
		return nil, err
	}
	if err := libhkb.ValidateFraction(num, den); err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	if num < 0 {
		num = -num
	}
	return py.String(libhkb.Fractions.Expansion(num%den, den).String()), nil
}

func py_World_LoadDefault(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)
	W.LoadDefault()
	return py.None, nil
}

// Returns the number of lines skipped while building the world.
func py_World_Load(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)

	var pathname string
	if err := py.LoadTuple(args, []interface{}{&pathname}); err != nil {
		return nil, err
	}

	desc, skipped, err := worldgen.ParseFile(pathname)
	if err != nil {
		return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	}
	skipped = append(skipped, W.Build(desc)...)
	return py.Int(len(skipped)), nil
}

func loadBox(args py.Tuple) (bl, tr gohkb.Vec3, err error) {
	err = py.LoadTuple(args, []interface{}{&bl.X, &bl.Y, &bl.Z, &tr.X, &tr.Y, &tr.Z})
	return
}

// Args 1-6 (float): x0, y0, z0, x1, y1, z1
func py_World_VisibleNodes(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)
	bl, tr, err := loadBox(args)
	if err != nil {
		return nil, err
	}
	return py.Int(len(W.VisibleNodes(bl, tr))), nil
}

// Args 1-6 (float): x0, y0, z0, x1, y1, z1
//
// Returns the number of visible edges; they are retained in sorted order for Edge() and Chop().
func py_World_VisibleEdges(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)
	bl, tr, err := loadBox(args)
	if err != nil {
		return nil, err
	}
	W.last = W.World.VisibleEdges(bl, tr).Sorted()
	return py.Int(len(W.last)), nil
}

func (W *pyWorld) edgeAt(args py.Tuple, more ...interface{}) (*gohkb.Edge, error) {
	var i int64
	if err := py.LoadTuple(args, append([]interface{}{&i}, more...)); err != nil {
		return nil, err
	}
	if i < 0 || i >= int64(len(W.last)) {
		return nil, py.ExceptionNewf(py.IndexError, "edge index %d out of range (%d visible)", i, len(W.last))
	}
	return W.last[i], nil
}

// Arg 1 (int): index into the last VisibleEdges() result
func py_World_Edge(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)
	e, err := W.edgeAt(args)
	if err != nil {
		return nil, err
	}
	return py.String(e.String()), nil
}

// Arg 1 (int): index into the last VisibleEdges() result
// Arg 2 (int): player (RED_PLAYER or BLUE_PLAYER)
func py_World_Chop(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)

	var player int64
	e, err := W.edgeAt(args, &player)
	if err != nil {
		return nil, err
	}
	p := gohkb.Player(player)
	if p != gohkb.RedPlayer && p != gohkb.BluePlayer {
		return nil, py.ExceptionNewf(py.ValueError, "unknown player %d", player)
	}
	return py.NewBool(W.World.Chop(e, p)), nil
}

func py_World_NumChains(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)
	return py.Int(len(W.Chains())), nil
}

// Arg 1 (int): layers
func py_World_Log(self py.Object, args py.Tuple) (py.Object, error) {
	W := self.(*pyWorld)

	var layers int64
	if err := py.LoadTuple(args, []interface{}{&layers}); err != nil {
		return nil, err
	}
	if layers < 0 || layers > 5 {
		return nil, py.ExceptionNewf(py.ValueError, "%v", gohkb.ErrLogLayers)
	}
	var b strings.Builder
	if err := W.Log(&b, uint8(layers)); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.String(b.String()), nil
}

func init() {

	/////////////////////////////////
	// World
	{
		pyWorldType.Dict["LoadDefault"] = py.MustNewMethod("LoadDefault", py_World_LoadDefault, 0, "builds the default world")
		pyWorldType.Dict["Load"] = py.MustNewMethod("Load", py_World_Load, 0, "builds a .hkb world file and returns the number of skipped lines")
		pyWorldType.Dict["VisibleNodes"] = py.MustNewMethod("VisibleNodes", py_World_VisibleNodes, 0, "")
		pyWorldType.Dict["VisibleEdges"] = py.MustNewMethod("VisibleEdges", py_World_VisibleEdges, 0, "")
		pyWorldType.Dict["Edge"] = py.MustNewMethod("Edge", py_World_Edge, 0, "")
		pyWorldType.Dict["Chop"] = py.MustNewMethod("Chop", py_World_Chop, 0, "")
		pyWorldType.Dict["NumChains"] = py.MustNewMethod("NumChains", py_World_NumChains, 0, "")
		pyWorldType.Dict["Log"] = py.MustNewMethod("Log", py_World_Log, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("World", py_NewWorld, 0, ""),
			py.MustNewMethod("FractionBranch", py_FractionBranch, 0, "branch color at order k of the chain for num/den"),
			py.MustNewMethod("FractionExpansion", py_FractionExpansion, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION":       py.String(LIB_VERSION),
			"DEFAULT_MAX_DEPTH": py.Int(gohkb.DefaultMaxDepth),
			"RED":               py.Int(gohkb.Red),
			"GREEN":             py.Int(gohkb.Green),
			"BLUE":              py.Int(gohkb.Blue),
			"RED_PLAYER":        py.Int(gohkb.RedPlayer),
			"BLUE_PLAYER":       py.Int(gohkb.BluePlayer),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyhkb",
				Doc:  "3D infinite Hackenbush gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
