package server

import (
	"strings"

	"arenamover/arena"
)

var arrowKeys = map[string]arena.Direction{
	"ArrowUp":    arena.DirUp,
	"ArrowDown":  arena.DirDown,
	"ArrowLeft":  arena.DirLeft,
	"ArrowRight": arena.DirRight,
}

var letterKeys = map[string]arena.Direction{
	"w": arena.DirUp,
	"s": arena.DirDown,
	"a": arena.DirLeft,
	"d": arena.DirRight,
}

// DirectionForKey 将浏览器 KeyboardEvent.key 映射为方向：方向键区分大小写，WASD 不区分
func DirectionForKey(key string) (arena.Direction, bool) {
	if dir, ok := arrowKeys[key]; ok {
		return dir, true
	}
	dir, ok := letterKeys[strings.ToLower(key)]
	return dir, ok
}
