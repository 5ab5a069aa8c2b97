package render

// WindowExtent is a window's client-area size in pixels.
type WindowExtent struct {
	Width, Height uint32
}

// IsZeroArea reports whether the window is currently minimized (spec.md
// §4.6: swapchain recreation blocks on window events while minimized).
func (e WindowExtent) IsZeroArea() bool { return e.Width == 0 || e.Height == 0 }

// AppState is passed by value to every node's execute callback each frame,
// spec.md §4.6: "AppState = (windowExtent, deltaTime, elapsedTime,
// frameIndex, isRelativeFirstFrame)".
type AppState struct {
	WindowExtent WindowExtent
	DeltaTime    float64
	ElapsedTime  float64

	// CurrentFrameIndex is the absolute frame counter since backend
	// creation.
	CurrentFrameIndex uint64
	// RelativeFrameIndex resets to 0 whenever the pipeline is rebuilt;
	// nodes use it to detect the first frame in the current pipeline.
	RelativeFrameIndex uint64
	// NextSwapchainBufferIndex is the back-buffer slot being rendered into.
	NextSwapchainBufferIndex uint32
}

// IsRelativeFirstFrame reports whether this is the first frame executed
// since the most recent pipeline (re)construction.
func (s AppState) IsRelativeFirstFrame() bool { return s.RelativeFrameIndex == 0 }
