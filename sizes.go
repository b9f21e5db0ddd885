package wavelet

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/dustin/go-humanize"
)

// SizeReport is a tree of byte sizes. Bytes of an inner report is the sum
// of its children.
type SizeReport struct {
	Name     string       `json:"name"`
	Bytes    int          `json:"bytes"`
	Children []SizeReport `json:"children,omitempty"`
}

func newSizeReport(name string, children ...SizeReport) SizeReport {
	r := SizeReport{Name: name, Children: children}
	for _, c := range children {
		r.Bytes += c.Bytes
	}
	return r
}

// String renders the report as an indented tree.
func (r SizeReport) String() string {
	var sb strings.Builder
	r.buildString(&sb, 0)
	return sb.String()
}

func (r SizeReport) buildString(sb *strings.Builder, indent int) {
	fmt.Fprintf(sb, "%s- %s: %s\n", strings.Repeat("  ", indent), r.Name, humanize.IBytes(uint64(r.Bytes)))
	for _, child := range r.Children {
		child.buildString(sb, indent+1)
	}
}

func (c *core) levelReport() SizeReport {
	children := make([]SizeReport, len(c.levels))
	for i, lv := range c.levels {
		children[i] = SizeReport{Name: fmt.Sprintf("level %d (%d bits)", i, lv.Num()), Bytes: lv.AllocSize()}
	}
	return newSizeReport("levels", children...)
}

func (c *core) alphabetReport() SizeReport {
	return SizeReport{Name: fmt.Sprintf("alphabet (%s, sigma %d)", c.alpha.Scheme, c.alpha.Sigma()), Bytes: c.alpha.AllocSize()}
}

// Sizes reports the bytes held by the level bit vectors and the alphabet.
func (m *Matrix) Sizes() SizeReport {
	return newSizeReport(m.kind.String(), m.levelReport(), m.alphabetReport())
}

// Sizes reports the bytes held by the level bit vectors, the node table and
// the alphabet.
func (t *Tree) Sizes() SizeReport {
	bytes := len(t.nodes)*int(unsafe.Sizeof(treeNode{})) + len(t.leafSym)*(3*8+4)
	nodes := SizeReport{Name: fmt.Sprintf("nodes (%d internal, %d leaves)", len(t.nodes), len(t.leafSym)), Bytes: bytes}
	return newSizeReport(t.kind.String(), t.levelReport(), nodes, t.alphabetReport())
}
