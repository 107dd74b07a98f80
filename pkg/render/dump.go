package render

import (
	"fmt"
	"strconv"

	"github.com/xlab/treeprint"
)

// Dump renders the display list as a tree; opacity and fixed groups become
// branches.
func Dump(list *DisplayList) string {
	root := treeprint.NewWithRoot(fmt.Sprintf("display list (%d commands)", list.Len()))
	stack := []treeprint.Tree{root}
	top := func() treeprint.Tree { return stack[len(stack)-1] }

	for _, cmd := range list.Commands {
		switch c := cmd.(type) {
		case PushOpacity:
			stack = append(stack, top().AddBranch(fmt.Sprintf("opacity %d", c.Alpha)))
		case PushFixed:
			stack = append(stack, top().AddBranch("fixed"))
		case PopOpacity, PopFixed:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		default:
			top().AddNode(describe(cmd))
		}
	}
	return root.String()
}

func describe(cmd Command) string {
	switch c := cmd.(type) {
	case FillRect:
		return fmt.Sprintf("rect %d,%d %dx%d %s", c.X, c.Y, c.Width, c.Height, c.Color.Hex())
	case FillRoundedRect:
		return fmt.Sprintf("rounded-rect %d,%d %dx%d r=%d %s", c.X, c.Y, c.Width, c.Height, c.RadiusPx, c.Color.Hex())
	case StrokeRoundedRect:
		return fmt.Sprintf("border %d,%d %dx%d r=%d w=%d %s", c.X, c.Y, c.Width, c.Height, c.RadiusPx, c.BorderWidthPx, c.Color.Hex())
	case DrawText:
		weight := ""
		if c.Style.Bold {
			weight = " bold"
		}
		return fmt.Sprintf("text %d,%d %s %dpx%s %s", c.X, c.Y, strconv.Quote(c.Text), c.Style.FontSizePx, weight, c.Style.Color.Hex())
	case DrawImage:
		return fmt.Sprintf("image %d,%d %dx%d %s", c.X, c.Y, c.Width, c.Height, c.Source)
	case DrawSvg:
		return fmt.Sprintf("svg %d,%d %dx%d (%d bytes)", c.X, c.Y, c.Width, c.Height, len(c.XML))
	case LinearGradientRect:
		return fmt.Sprintf("gradient %d,%d %dx%d %s %s..%s", c.X, c.Y, c.Width, c.Height, c.Direction, c.Start.Hex(), c.End.Hex())
	}
	return fmt.Sprintf("%T", cmd)
}
