package input

import "fmt"

// Action is the signal a producer hands to the dispatcher. It carries no
// payload: Render means "redraw at least once soon", never "redraw for this input".
type Action uint8

const (
	ActionRender Action = iota // request one redraw cycle
	ActionQuit                 // end the dispatch loop
)

func (a Action) String() string {
	switch a {
	case ActionRender:
		return "render"
	case ActionQuit:
		return "quit"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}
