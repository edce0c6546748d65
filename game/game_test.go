package game

import (
	"testing"

	"golang.org/x/exp/rand"
)

func newTestGame(t *testing.T, gridSize int) *Game {
	t.Helper()
	return NewGame(gridSize, rand.New(rand.NewSource(42)))
}

func TestResetInitialState(t *testing.T) {
	g := newTestGame(t, 15)
	state := g.Reset()

	if want := 2*15*15 + 4; len(state) != want {
		t.Fatalf("state length = %d, want %d", len(state), want)
	}

	snap := g.Snapshot()
	if len(snap.Body) != StartLength {
		t.Errorf("body length = %d, want %d", len(snap.Body), StartLength)
	}
	if head := snap.Body[0]; head != (Point{X: 7, Y: 7}) {
		t.Errorf("head = %v, want (7,7)", head)
	}
	if snap.Direction != Right {
		t.Errorf("direction = %v, want Right", snap.Direction)
	}
	for _, p := range snap.Body {
		if snap.Fruit == p {
			t.Errorf("fruit %v spawned on the body", snap.Fruit)
		}
	}
}

func TestStepRightMovesHead(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()

	if _, _, _, _, err := g.Step(int(Right)); err != nil {
		t.Fatalf("Step(Right) returned error: %v", err)
	}
	if head := g.Snapshot().Body[0]; head != (Point{X: 8, Y: 7}) {
		t.Errorf("head after right step = %v, want (8,7)", head)
	}
}

func TestOppositeDirectionIsIgnored(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()

	// Right -> Down è una svolta valida
	if _, _, done, _, err := g.Step(int(Down)); err != nil || done {
		t.Fatalf("Step(Down) = done %v, err %v", done, err)
	}
	if dir := g.Snapshot().Direction; dir != Down {
		t.Fatalf("direction = %v, want Down", dir)
	}

	// Up è l'opposto esatto di Down: il serpente continua verso il basso
	g.Step(int(Up))
	if dir := g.Snapshot().Direction; dir != Down {
		t.Errorf("direction after opposite request = %v, want Down", dir)
	}
}

func TestInvalidActionIsRejected(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()

	for _, action := range []int{-1, 4, 99} {
		if _, _, _, _, err := g.Step(action); err == nil {
			t.Errorf("Step(%d) accepted an out-of-range action", action)
		}
	}
}

func TestStepReward(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()

	_, reward, done, cause, err := g.Step(int(Right))
	if err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if cause != CauseStep {
		t.Errorf("cause = %q, want %q", cause, CauseStep)
	}
	if reward != StepPenalty {
		t.Errorf("reward = %v, want %v", reward, StepPenalty)
	}
	if done {
		t.Error("plain step reported terminal")
	}
}

func TestFruitRewardAndGrowth(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()
	g.fruit = Point{X: 8, Y: 7} // prossima cella davanti alla testa

	_, reward, done, cause, err := g.Step(int(Right))
	if err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if cause != CauseFruit {
		t.Fatalf("cause = %q, want %q", cause, CauseFruit)
	}
	if want := StepPenalty + FruitReward; reward != want {
		t.Errorf("fruit reward = %v, want %v", reward, want)
	}
	if done {
		t.Error("fruit step reported terminal")
	}
	if got := len(g.Snapshot().Body); got != StartLength+1 {
		t.Errorf("body length after fruit = %d, want %d", got, StartLength+1)
	}

	// La lunghezza resta costante sui passi successivi senza frutto
	for i := 0; i < 3; i++ {
		if g.fruit == (Point{X: 9 + i, Y: 7}) {
			g.fruit = Point{X: 0, Y: 0}
		}
		g.Step(int(Right))
		if got := len(g.Snapshot().Body); got != StartLength+1 {
			t.Fatalf("body length after non-fruit step %d = %d, want %d", i, got, StartLength+1)
		}
	}
}

func TestWallCollision(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()

	var (
		reward float64
		done   bool
		cause  Cause
	)
	// Dalla testa (7,7) servono 7 passi per raggiungere x=14 e un
	// ottavo passo per sconfinare
	for i := 0; i < 8; i++ {
		if g.fruit.Y == 7 && g.fruit.X > 7 {
			g.fruit = Point{X: 0, Y: 0} // tieni il frutto fuori strada
		}
		_, reward, done, cause, _ = g.Step(int(Right))
		if done {
			break
		}
	}

	if cause != CauseWall {
		t.Fatalf("cause = %q, want %q", cause, CauseWall)
	}
	if !done {
		t.Error("wall collision did not terminate the episode")
	}
	if want := StepPenalty + WallPenalty + SelfPenalty; reward != want {
		t.Errorf("wall reward = %v, want %v", reward, want)
	}
	// Lo stato restituito è quello pre-terminale: la testa è ancora in griglia
	if head := g.Snapshot().Body[0]; head != (Point{X: 14, Y: 7}) {
		t.Errorf("head after wall collision = %v, want (14,7)", head)
	}
}

func TestSelfCollision(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()

	// Corpo a U: muovendosi verso il basso la testa incontra (5,6)
	g.body = []Point{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}, {X: 4, Y: 6}}
	g.dir = Left
	g.fruit = Point{X: 0, Y: 0}

	_, reward, done, cause, err := g.Step(int(Down))
	if err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if cause != CauseSelf {
		t.Fatalf("cause = %q, want %q", cause, CauseSelf)
	}
	if !done {
		t.Error("self collision did not terminate the episode")
	}
	if want := StepPenalty + SelfPenalty; reward != want {
		t.Errorf("self reward = %v, want %v", reward, want)
	}
}

func TestFruitSpawnsOnFreeCell(t *testing.T) {
	g := newTestGame(t, 5)
	for i := 0; i < 50; i++ {
		g.Reset()
		snap := g.Snapshot()
		for _, p := range snap.Body {
			if snap.Fruit == p {
				t.Fatalf("reset %d: fruit %v on body", i, snap.Fruit)
			}
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	g := newTestGame(t, 15)
	g.Reset()

	snap := g.Snapshot()
	snap.Body[0] = Point{X: -1, Y: -1}
	if head := g.Snapshot().Body[0]; head != (Point{X: 7, Y: 7}) {
		t.Errorf("mutating the snapshot changed the game body: head = %v", head)
	}
}

func TestDirectionOpposite(t *testing.T) {
	cases := map[Direction]Direction{
		Up:    Down,
		Down:  Up,
		Left:  Right,
		Right: Left,
	}
	for dir, want := range cases {
		if got := dir.Opposite(); got != want {
			t.Errorf("%v.Opposite() = %v, want %v", dir, got, want)
		}
	}
}
