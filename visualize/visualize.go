// Package visualize renders a finished tally grid as a false-color
// heatmap with an interactive color-scale slider. It is the out-of-core
// replacement for the original mini-app's disabled VisIt dump path —
// deliberately isolated from transport, driver and tally so the core
// never depends on a windowing toolkit.
package visualize

import (
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	windowWidth  = 900
	windowHeight = 640
	panelHeight  = 70
)

// Run opens a window and renders tally (an nx*ny grid) until the user
// closes it. scaleMax seeds the initial color-scale maximum; a slider
// lets the user adjust it at runtime.
func Run(tally []float64, nx, ny int, scaleMax float64) error {
	if len(tally) != nx*ny {
		return fmt.Errorf("visualize: tally has %d cells, expected %d for a %dx%d grid", len(tally), nx*ny, nx, ny)
	}
	if scaleMax <= 0 {
		scaleMax = gridMax(tally)
	}

	rl.InitWindow(windowWidth, windowHeight, "Tally Heatmap")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(nx, ny, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	heatW := float32(windowWidth - 20)
	heatH := float32(windowHeight - panelHeight - 30)

	updateTexture(texture, tally, nx, ny, float32(scaleMax))

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(nx), Height: float32(ny)},
			rl.Rectangle{X: 10, Y: 10, Width: heatW, Height: heatH},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, int32(heatW), int32(heatH), rl.DarkGray)

		panelY := float32(heatH + 25)
		rl.DrawText("Color scale max", 15, int32(panelY), 16, rl.DarkGray)
		panelY += 20

		newMax := gui.SliderBar(
			rl.Rectangle{X: 15, Y: panelY, Width: heatW - 100, Height: 20},
			"0", fmt.Sprintf("%.3g", gridMax(tally)*2),
			float32(scaleMax), 0, float32(gridMax(tally)*2+1e-12),
		)
		rl.DrawText(fmt.Sprintf("%.4g", scaleMax), int32(15+heatW-90), int32(panelY+2), 16, rl.DarkGray)
		if float64(newMax) != scaleMax {
			scaleMax = float64(newMax)
			updateTexture(texture, tally, nx, ny, float32(scaleMax))
		}

		rl.EndDrawing()
	}
	return nil
}

func gridMax(tally []float64) float64 {
	max := 0.0
	for _, v := range tally {
		if v > max {
			max = v
		}
	}
	return max
}

// updateTexture maps each cell's energy deposition onto a dark-blue ->
// cyan -> yellow -> white gradient scaled by max.
func updateTexture(texture rl.Texture2D, tally []float64, nx, ny int, max float32) {
	pixels := make([]color.RGBA, nx*ny)
	for i, raw := range tally {
		v := float32(0)
		if max > 0 {
			v = float32(raw) / max
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}

		r, g, b := colorFor(v)
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}

// colorFor maps a normalized [0,1] intensity onto a dark-blue -> cyan ->
// yellow -> white gradient.
func colorFor(v float32) (r, g, b uint8) {
	switch {
	case v < 0.25:
		t := v / 0.25
		return uint8(10 + t*30), uint8(20 + t*60), uint8(60 + t*100)
	case v < 0.5:
		t := (v - 0.25) / 0.25
		return uint8(40 + t*20), uint8(80 + t*120), uint8(160 + t*40)
	case v < 0.75:
		t := (v - 0.5) / 0.25
		return uint8(60 + t*140), uint8(200 - t*40), uint8(200 - t*150)
	default:
		t := (v - 0.75) / 0.25
		return uint8(200 + t*55), uint8(160 + t*95), uint8(50 + t*205)
	}
}
