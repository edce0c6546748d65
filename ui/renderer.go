package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Nomarcus/Snake-ML/game"
)

const (
	cellSize      = 32
	statsPanel    = 260
	borderPadding = 10
)

// HUD raccoglie i valori mostrati nel pannello laterale.
type HUD struct {
	Episode    int
	Episodes   int
	Epsilon    float64
	Reward     float64
	Loss       float64
	BestReward float64
}

// Renderer disegna lo stato del gioco in una finestra raylib a partire
// da uno Snapshot di sola lettura. Il rendering è opzionale: i chiamanti
// controllano Available() e proseguono headless se la finestra non è
// utilizzabile.
type Renderer struct {
	gridSize  int
	available bool
}

// NewRenderer apre la finestra per una griglia gridSize x gridSize.
func NewRenderer(title string, gridSize int) *Renderer {
	width := int32(gridSize*cellSize + statsPanel + 2*borderPadding)
	height := int32(gridSize*cellSize + 2*borderPadding)

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(width, height, title)
	r := &Renderer{
		gridSize:  gridSize,
		available: rl.IsWindowReady(),
	}
	if r.available {
		rl.SetTargetFPS(60)
	}
	return r
}

// Available riporta se la finestra è stata aperta con successo.
func (r *Renderer) Available() bool { return r.available }

// ShouldClose riporta se l'utente ha chiesto di chiudere la finestra.
func (r *Renderer) ShouldClose() bool {
	return r.available && rl.WindowShouldClose()
}

// Close chiude la finestra.
func (r *Renderer) Close() {
	if r.available {
		rl.CloseWindow()
		r.available = false
	}
}

// Draw disegna un frame: griglia, serpente, frutto e pannello HUD.
func (r *Renderer) Draw(snap game.Snapshot, hud HUD) {
	if !r.available {
		return
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	offsetX := int32(borderPadding)
	offsetY := int32(borderPadding)
	gridPixels := int32(r.gridSize * cellSize)

	// Sfondo e linee della griglia
	rl.DrawRectangle(offsetX-1, offsetY-1, gridPixels+2, gridPixels+2, rl.DarkGray)
	for x := 0; x < r.gridSize; x++ {
		for y := 0; y < r.gridSize; y++ {
			rl.DrawRectangleLines(
				offsetX+int32(x*cellSize),
				offsetY+int32(y*cellSize),
				cellSize, cellSize, rl.Gray)
		}
	}

	// Corpo del serpente, testa evidenziata
	for i, p := range snap.Body {
		color := rl.Green
		if i == 0 {
			color = rl.Lime
		}
		rl.DrawRectangle(
			offsetX+int32(p.X*cellSize),
			offsetY+int32(p.Y*cellSize),
			cellSize, cellSize, color)
	}

	// Frutto
	rl.DrawRectangle(
		offsetX+int32(snap.Fruit.X*cellSize),
		offsetY+int32(snap.Fruit.Y*cellSize),
		cellSize, cellSize, rl.Red)

	r.drawStatsPanel(snap, hud, offsetX+gridPixels+borderPadding)

	rl.EndDrawing()
}

func (r *Renderer) drawStatsPanel(snap game.Snapshot, hud HUD, statsX int32) {
	const fontSize = 18
	const lineHeight = 26
	statsY := int32(borderPadding)

	rl.DrawRectangle(statsX-5, 0, statsPanel+2*borderPadding, int32(rl.GetScreenHeight()), rl.DarkGray)

	lines := []string{
		fmt.Sprintf("Episode: %d/%d", hud.Episode, hud.Episodes),
		fmt.Sprintf("Reward: %.1f", hud.Reward),
		fmt.Sprintf("Best: %.1f", hud.BestReward),
		fmt.Sprintf("Epsilon: %.3f", hud.Epsilon),
		fmt.Sprintf("Loss: %.5f", hud.Loss),
		"",
		fmt.Sprintf("Length: %d", len(snap.Body)),
		fmt.Sprintf("Fruits: %d", snap.Fruits),
		fmt.Sprintf("Steps: %d", snap.Steps),
		fmt.Sprintf("Direction: %s", snap.Direction),
	}
	for _, line := range lines {
		rl.DrawText(line, statsX, statsY, fontSize, rl.White)
		statsY += lineHeight
	}
}
