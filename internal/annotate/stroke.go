package annotate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Point is a position on the annotation surface in display pixels.
type Point struct {
	X float64
	Y float64
}

// Op identifies a path command.
type Op byte

const (
	MoveTo Op = 'M'
	LineTo Op = 'L'
)

// Command is one path command.
type Command struct {
	Op Op
	Point
}

// Stroke is the path left by one continuous contact gesture. The first command
// is always a move-to.
type Stroke struct {
	commands []Command
}

// NewStroke starts a stroke at p.
func NewStroke(p Point) Stroke {
	return Stroke{commands: []Command{{Op: MoveTo, Point: p}}}
}

func (s Stroke) lineTo(p Point) Stroke {
	cmds := make([]Command, len(s.commands), len(s.commands)+1)
	copy(cmds, s.commands)
	return Stroke{commands: append(cmds, Command{Op: LineTo, Point: p})}
}

// Commands returns a copy of the stroke's path commands.
func (s Stroke) Commands() []Command {
	out := make([]Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// Points returns the stroke's points in drawing order.
func (s Stroke) Points() []Point {
	out := make([]Point, len(s.commands))
	for i, c := range s.commands {
		out[i] = c.Point
	}
	return out
}

// Len reports the number of points in the stroke.
func (s Stroke) Len() int { return len(s.commands) }

// Empty reports whether the stroke has no points.
func (s Stroke) Empty() bool { return len(s.commands) == 0 }

// Path encodes the stroke as SVG path data, e.g. "M 10 20 L 30 40".
func (s Stroke) Path() string {
	var sb strings.Builder
	for i, c := range s.commands {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte(c.Op))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(c.X))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(c.Y))
	}
	return sb.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePath decodes path data produced by Stroke.Path.
func ParsePath(d string) (Stroke, error) {
	fields := strings.Fields(d)
	if len(fields) == 0 {
		return Stroke{}, fmt.Errorf("empty path")
	}
	if len(fields)%3 != 0 {
		return Stroke{}, fmt.Errorf("path %q: expected command x y triples", d)
	}
	var s Stroke
	for i := 0; i < len(fields); i += 3 {
		op := Op(0)
		switch strings.ToUpper(fields[i]) {
		case "M":
			op = MoveTo
		case "L":
			op = LineTo
		default:
			return Stroke{}, fmt.Errorf("path %q: unsupported command %q", d, fields[i])
		}
		if i == 0 && op != MoveTo {
			return Stroke{}, fmt.Errorf("path %q: must start with M", d)
		}
		if i > 0 && op != LineTo {
			return Stroke{}, fmt.Errorf("path %q: only the first command may be M", d)
		}
		x, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return Stroke{}, fmt.Errorf("path %q: invalid x %q", d, fields[i+1])
		}
		y, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return Stroke{}, fmt.Errorf("path %q: invalid y %q", d, fields[i+2])
		}
		s.commands = append(s.commands, Command{Op: op, Point: Point{X: x, Y: y}})
	}
	return s, nil
}

type pathJSON struct {
	D string `json:"d"`
}

// EncodeSnapshot serializes strokes as a JSON array of {"d": path} objects.
func EncodeSnapshot(strokes []Stroke) string {
	items := make([]pathJSON, len(strokes))
	for i, s := range strokes {
		items[i] = pathJSON{D: s.Path()}
	}
	data, err := json.Marshal(items)
	if err != nil {
		// Marshalling plain strings cannot fail.
		panic(err)
	}
	return string(data)
}

// DecodeSnapshot parses the output of EncodeSnapshot.
func DecodeSnapshot(snapshot string) ([]Stroke, error) {
	if strings.TrimSpace(snapshot) == "" {
		return nil, nil
	}
	var items []pathJSON
	if err := json.Unmarshal([]byte(snapshot), &items); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	out := make([]Stroke, 0, len(items))
	for _, it := range items {
		s, err := ParsePath(it.D)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
