package roomview

// clickThresholdSq is the squared displacement (in screen pixels) under
// which a press-move-release gesture counts as a click rather than a drag.
const clickThresholdSq = 9.0

// CanvasRect is the room canvas geometry in screen pixels, captured at
// gesture start so mid-gesture layout changes cannot skew the mapping.
type CanvasRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// DragHandler translates pointer gestures on a device icon into canvas
// positions. Coordinates in are screen pixels; positions out are canvas
// percentages in [0,100].
//
// A gesture that never moves beyond the click threshold is a click: the
// final position is still committed (it equals the start position) and the
// select callback fires exactly once. A handler tracks one gesture at a
// time and is not safe for concurrent use.
type DragHandler struct {
	onMove   func(id int64, x, y float64)
	onCommit func(id int64, x, y float64)
	onSelect func(id int64)

	active   bool
	deviceID int64
	canvas   CanvasRect
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragged  bool
}

// NewDragHandler creates a handler. onMove previews positions during the
// gesture, onCommit persists the final one, onSelect handles clicks. Any
// callback may be nil.
func NewDragHandler(onMove, onCommit func(id int64, x, y float64), onSelect func(id int64)) *DragHandler {
	return &DragHandler{
		onMove:   onMove,
		onCommit: onCommit,
		onSelect: onSelect,
	}
}

// Active reports whether a gesture is in progress.
func (h *DragHandler) Active() bool {
	return h.active
}

// Start begins a gesture on the given device at a screen coordinate and
// emits the first position preview, so the marker tracks the pointer from
// the initial press. A gesture already in progress is abandoned.
func (h *DragHandler) Start(deviceID int64, canvas CanvasRect, screenX, screenY float64) {
	h.active = true
	h.deviceID = deviceID
	h.canvas = canvas
	h.startX = screenX
	h.startY = screenY
	h.lastX = screenX
	h.lastY = screenY
	h.dragged = false

	h.preview(screenX, screenY)
}

// Move updates the gesture with a new pointer coordinate and emits a preview
// for it. The click threshold only decides click-vs-drag: once displacement
// from the start exceeds it the gesture is a drag for the rest of its
// lifetime, even if the pointer returns to the start.
func (h *DragHandler) Move(screenX, screenY float64) {
	if !h.active {
		return
	}
	h.lastX = screenX
	h.lastY = screenY

	dx := screenX - h.startX
	dy := screenY - h.startY
	if dx*dx+dy*dy > clickThresholdSq {
		h.dragged = true
	}

	h.preview(screenX, screenY)
}

// End finishes the gesture: one final preview is emitted, the final position
// is committed, and when the gesture never left the click threshold the
// select callback fires too.
func (h *DragHandler) End() {
	if !h.active {
		return
	}
	h.active = false

	h.preview(h.lastX, h.lastY)

	x, y := h.position(h.lastX, h.lastY)
	if h.onCommit != nil {
		h.onCommit(h.deviceID, x, y)
	}
	if !h.dragged && h.onSelect != nil {
		h.onSelect(h.deviceID)
	}
}

// preview emits the pointer's mapped position through the move callback.
func (h *DragHandler) preview(screenX, screenY float64) {
	if h.onMove == nil {
		return
	}
	x, y := h.position(screenX, screenY)
	h.onMove(h.deviceID, x, y)
}

// Cancel abandons the gesture without committing or selecting.
func (h *DragHandler) Cancel() {
	h.active = false
}

// position maps a screen coordinate onto the canvas as clamped percentages.
// A degenerate canvas pins the position to the origin.
func (h *DragHandler) position(screenX, screenY float64) (float64, float64) {
	if h.canvas.Width <= 0 || h.canvas.Height <= 0 {
		return 0, 0
	}
	x := (screenX - h.canvas.Left) / h.canvas.Width * 100
	y := (screenY - h.canvas.Top) / h.canvas.Height * 100
	return clampPercent(x), clampPercent(y)
}
