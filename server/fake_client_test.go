package server

import (
	"context"
	"sync"

	"arenamover/arena"
)

// fakeArena 记录所有调用；err 非空时每个操作都返回它
type fakeArena struct {
	mu        sync.Mutex
	registers []string
	moves     []arena.Direction
	toggles   [][2]int
	states    int
	err       error
	moveDone  chan arena.Direction
}

func (f *fakeArena) Register(_ context.Context, role string) (arena.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers = append(f.registers, role)
	if f.err != nil {
		return arena.Document{}, f.err
	}
	return arena.Document{Value: map[string]any{"role": role}}, nil
}

func (f *fakeArena) State(context.Context) (arena.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states++
	if f.err != nil {
		return arena.Document{}, f.err
	}
	return arena.Document{Value: map[string]any{"x": float64(4), "y": float64(2)}}, nil
}

func (f *fakeArena) Move(_ context.Context, dir arena.Direction) (arena.Document, error) {
	f.mu.Lock()
	f.moves = append(f.moves, dir)
	err := f.err
	f.mu.Unlock()
	if f.moveDone != nil {
		f.moveDone <- dir
	}
	if err != nil {
		return arena.Document{}, err
	}
	return arena.Document{Value: map[string]any{"moved": string(dir)}}, nil
}

func (f *fakeArena) ToggleBlock(_ context.Context, x, y int) (arena.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles = append(f.toggles, [2]int{x, y})
	if f.err != nil {
		return arena.Document{}, f.err
	}
	return arena.Document{Value: map[string]any{"toggled": true}}, nil
}

func (f *fakeArena) movesSnapshot() []arena.Direction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]arena.Direction(nil), f.moves...)
}

func (f *fakeArena) togglesSnapshot() [][2]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]int(nil), f.toggles...)
}

var _ ArenaClient = (*arena.Client)(nil)
