package worldgen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

var sLineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Arrow", Pattern: `->`},
	{Name: "DColon", Pattern: `::`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

var sParseLine = participle.MustBuild[Line](
	participle.Lexer(sLineLexer),
	participle.Elide("Whitespace", "Comment"),
)

// ParseLine parses a single .hkb statement.
func ParseLine(text string) (*Line, error) {
	return sParseLine.ParseString("", text)
}

// ParseFile opens and parses the given .hkb file.
func ParseFile(pathname string) (*gohkb.WorldDesc, []error, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening world %q", pathname)
	}
	defer file.Close()

	desc, skipped := Parse(file, pathname)
	return desc, skipped, nil
}

// Parse reads a .hkb world description.
//
// A line that cannot be parsed is logged, returned in skipped, and otherwise ignored.
func Parse(r io.Reader, name string) (desc *gohkb.WorldDesc, skipped []error) {
	b := builder{
		desc: &gohkb.WorldDesc{Name: name},
		ids:  make(map[gohkb.Vec3]int32),
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || text[0] == '#' {
			continue
		}

		line, err := ParseLine(text)
		if err == nil {
			err = b.add(line)
		}
		if err != nil {
			err = errors.Wrapf(gohkb.ErrBadWorldLine, "%s:%d: %q: %v", name, lineNum, text, err)
			klog.Warningf("worldgen: %v", err)
			skipped = append(skipped, err)
		}
	}
	if err := scanner.Err(); err != nil {
		skipped = append(skipped, errors.Wrapf(err, "reading %s", name))
	}

	klog.V(2).Infof("worldgen: %s: %d nodes from %d lines (%d skipped)", name, len(b.desc.Nodes), lineNum, len(skipped))
	return b.desc, skipped
}

type builder struct {
	desc *gohkb.WorldDesc
	ids  map[gohkb.Vec3]int32
}

func (b *builder) nodeID(v Vec) int32 {
	pos := v.Vec3()
	id, exists := b.ids[pos]
	if !exists {
		id = int32(len(b.desc.Nodes))
		b.ids[pos] = id
		b.desc.Nodes = append(b.desc.Nodes, gohkb.NodeDesc{Pos: pos})
	}
	return id
}

func (b *builder) add(line *Line) error {
	switch {
	case line.Branch != nil:
		return b.addBranch(line.Branch)
	case line.Chain != nil:
		return b.addChain(line.Chain)
	}
	return errors.New("empty statement")
}

func (b *builder) addBranch(br *BranchLine) error {
	t, err := parseColor(br.Color)
	if err != nil {
		return err
	}
	if br.From == br.To {
		return errors.New("branch connects a node to itself")
	}

	from := b.nodeID(br.From)
	to := b.nodeID(br.To)
	node := &b.desc.Nodes[from]
	node.Links = append(node.Links, gohkb.LinkDesc{To: to, Type: t})
	return nil
}

func (b *builder) addChain(ch *ChainLine) error {
	chain := &gohkb.ChainDesc{
		Dir: ch.Dir.Vec3(),
	}

	switch ch.Step {
	case "g":
		chain.Step = "geometric"
	case "l":
		chain.Step = "linear"
	case "c", "h", "q":
		return errors.Wrapf(gohkb.ErrUnknownGenerator, "step %q is not supported", ch.Step)
	default:
		return errors.Wrapf(gohkb.ErrUnknownGenerator, "%q", ch.Step)
	}

	if ch.Frac != nil {
		chain.Fraction = true
		chain.Num = ch.Frac.Num
		chain.Den = ch.Frac.Den
		if ch.Color != "f" {
			if _, err := parseColor(ch.Color); err != nil {
				return err
			}
		}
	} else if ch.Color == "f" {
		return errors.New("fraction chain needs num den")
	} else {
		t, err := parseColor(ch.Color)
		if err != nil {
			return err
		}
		chain.Type = t
	}

	id := b.nodeID(ch.At)
	node := &b.desc.Nodes[id]
	if node.Chain != nil {
		return errors.Errorf("node %v already anchors a chain", node.Pos)
	}
	node.Chain = chain
	return nil
}

func parseColor(c string) (gohkb.BranchType, error) {
	if len(c) == 1 {
		if t, ok := gohkb.ParseBranchType(c[0]); ok {
			return t, nil
		}
	}
	return gohkb.Invalid, errors.Errorf("invalid branch type %q", c)
}

func (v Vec) Vec3() gohkb.Vec3 {
	return gohkb.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Format writes desc as .hkb text.
func Format(w io.Writer, desc *gohkb.WorldDesc) error {
	bw := bufio.NewWriter(w)
	for _, node := range desc.Nodes {
		for _, link := range node.Links {
			to := desc.Nodes[link.To].Pos
			fmt.Fprintf(bw, "b %c %s -> %s\n", link.Type.Letter(), formatVec(node.Pos), formatVec(to))
		}
		if ch := node.Chain; ch != nil {
			step := "g"
			if ch.Step == "linear" {
				step = "l"
			}
			if ch.Fraction {
				fmt.Fprintf(bw, "s f %s :: %s %s %d %d\n", formatVec(node.Pos), formatVec(ch.Dir), step, ch.Num, ch.Den)
			} else {
				fmt.Fprintf(bw, "s %c %s :: %s %s\n", ch.Type.Letter(), formatVec(node.Pos), formatVec(ch.Dir), step)
			}
		}
	}
	return bw.Flush()
}

func formatVec(v gohkb.Vec3) string {
	return formatFloat(v.X) + " " + formatFloat(v.Y) + " " + formatFloat(v.Z)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
