package arena

import (
	"fmt"
	"strings"
)

// Direction 移动方向，按原样作为 move 请求体发送给竞技场服务
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions 全部合法方向，/move 参数错误时随错误一并返回
var Directions = []Direction{DirUp, DirDown, DirLeft, DirRight}

// ParseDirection 解析方向名，大小写不敏感
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) String() string { return string(d) }
