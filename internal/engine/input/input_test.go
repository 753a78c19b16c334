package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  Event
		ok    bool
	}{
		{"quit", &sdl.QuitEvent{}, Event{Type: EventQuit}, true},
		{"resize", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600},
			Event{Type: EventWindowResize, Width: 800, Height: 600}, true},
		{"other window event", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_MOVED}, Event{}, false},
		{"key down", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_SPACE}},
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_SPACE}, true},
		{"key repeat", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1}, Event{}, false},
		{"motion", &sdl.MouseMotionEvent{X: 10, Y: 20, XRel: -2, YRel: 3},
			Event{Type: EventMouseMove, MouseX: 10, MouseY: 20, DeltaX: -2, DeltaY: 3}, true},
		{"button", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, X: 5, Y: 6, Button: sdl.BUTTON_LEFT},
			Event{Type: EventMouseDown, MouseX: 5, MouseY: 6, Button: sdl.BUTTON_LEFT}, true},
		{"wheel", &sdl.MouseWheelEvent{Y: -1}, Event{Type: EventMouseWheel, Wheel: -1}, true},
		{"drop", &sdl.DropEvent{Type: sdl.DROPFILE, File: "a.glb"}, Event{Type: EventDropFile, Path: "a.glb"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translate(tt.event)
			if ok != tt.ok || got != tt.want {
				t.Errorf("translate = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestButtonState(t *testing.T) {
	in := New()
	in.Push(Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT})
	if !in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Fatal("left button should be down")
	}
	in.Push(Event{Type: EventMouseUp, Button: sdl.BUTTON_LEFT})
	if in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Error("left button should be released")
	}
	if len(in.Events()) != 2 {
		t.Errorf("events = %d, want 2", len(in.Events()))
	}
	in.Reset()
	if len(in.Events()) != 0 {
		t.Error("Reset should drop events")
	}
}
