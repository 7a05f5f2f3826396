package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	if cam.X != 640 || cam.Y != 360 {
		t.Errorf("expected camera at (640, 360), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestIdentityAtDefault(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	sx, sy := cam.WorldToScreen(100, 200)
	if !near(sx, 100) || !near(sy, 200) {
		t.Errorf("expected 1:1 mapping, got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.SetZoom(2)
	cam.Pan(100, -50)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToStage(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	cam.Pan(-5000, 5000)
	if cam.X != 0 || cam.Y != 720 {
		t.Errorf("expected center clamped to (0, 720), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestPanScalesWithZoom(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.SetZoom(2)

	cam.Pan(100, 0)
	if !near(cam.X, 690) {
		t.Errorf("expected 100px pan at 2x to move 50 units, got X=%f", cam.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	wx, wy := cam.ScreenToWorld(900, 200)
	cam.ZoomAt(2, 900, 200)
	ax, ay := cam.ScreenToWorld(900, 200)
	if !near(wx, ax) || !near(wy, ay) {
		t.Errorf("point under cursor moved: (%f,%f) -> (%f,%f)", wx, wy, ax, ay)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.SetZoom(2)

	if !cam.IsVisible(600, 300, 50, 50) {
		t.Error("rect at the center should be visible")
	}
	if cam.IsVisible(0, 0, 100, 100) {
		t.Error("corner rect should be off screen at 2x")
	}
}

func TestSetStageRescalesCenter(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.Pan(-320, 0)

	cam.SetStage(2560, 1440)
	if cam.X != 640 || cam.Y != 720 {
		t.Errorf("expected center scaled to (640, 720), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.Pan(100, 100)
	cam.SetZoom(3)

	cam.Reset()
	if cam.X != 640 || cam.Y != 360 || cam.Zoom != 1 {
		t.Errorf("expected default view, got (%f, %f) zoom %f", cam.X, cam.Y, cam.Zoom)
	}
}
