package bsp

import (
	"fmt"
	"io"
)

// PrintTree writes the tree to w, one member per line, children indented
// under their node with the front child first.
func PrintTree(w io.Writer, t *Tree) {
	var printRecursive func(BSPMember, string, string)
	printRecursive = func(member BSPMember, prefix, label string) {
		switch v := member.(type) {
		case *Subsector:
			sector := fmt.Sprint(v.Sector)
			if v.Void {
				sector = "void"
			}
			fmt.Fprintf(w, "%s- %s subsector %d: sector %s, %d segs, closed %v, %v\n",
				prefix, label, v.Index, sector, len(v.Segments), v.Closed, v.Rotation)
		case *Node:
			fmt.Fprintf(w, "%s- %s node %d: (%g,%g) along (%g,%g), splitter %d\n",
				prefix, label, v.Index, v.X, v.Y, v.DX, v.DY, v.Splitter)
			printRecursive(v.ChildR, prefix+"   ", "R")
			printRecursive(v.ChildL, prefix+"   ", "L")
		default:
			fmt.Fprintln(w, prefix+"- null")
		}
	}

	printRecursive(t.Root, "", "root")
}
