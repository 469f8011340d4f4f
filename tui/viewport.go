// ABOUTME: Viewport manager for cursor-to-middle scrolling
// ABOUTME: Computes the playlist scroll offset that keeps the browse cursor visible

package tui

// ViewportManager computes vim/less style scrolling: the cursor moves to the
// middle of the viewport, then the content scrolls under it
type ViewportManager struct {
	height     int // Visible rows
	cursorPos  int // Row the cursor is on; negative means no cursor
	totalItems int
}

// NewViewportManager creates a new viewport manager
func NewViewportManager(height, cursorPos, totalItems int) *ViewportManager {
	return &ViewportManager{
		height:     height,
		cursorPos:  cursorPos,
		totalItems: totalItems,
	}
}

// ScrollPhase is the region of the list the cursor is in
type ScrollPhase int

const (
	TopPhase    ScrollPhase = iota // Cursor moves, viewport at top
	MiddlePhase                    // Cursor at middle, content scrolls
	BottomPhase                    // Viewport at bottom, cursor moves
)

// GetPhase returns the current scrolling phase
func (vm *ViewportManager) GetPhase() ScrollPhase {
	if vm.totalItems == 0 || vm.height < 1 || vm.cursorPos < vm.height/2 {
		return TopPhase
	}

	if vm.cursorPos < vm.totalItems-vm.height+vm.height/2 {
		return MiddlePhase
	}

	return BottomPhase
}

// CalculateOffset returns the viewport Y offset for the cursor
func (vm *ViewportManager) CalculateOffset() int {
	switch vm.GetPhase() {
	case MiddlePhase:
		return vm.cursorPos - vm.height/2
	case BottomPhase:
		return max(0, vm.totalItems-vm.height)
	default:
		return 0
	}
}
