package strokepath

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// CurveSamples is the number of equally spaced parameter values at which each
// cubic segment is evaluated. The segment start is not re-emitted because it is
// the previous cursor position.
const CurveSamples = 8

// Parse converts a single path description into an ordered list of points.
//
// Parameters:
//   - pathData: a path string such as "M 50.25,16.5 c 0.12,1.75 -0.5,3.25 -1,4.5"
//
// Returns:
//   - The sampled points in drawing order. Blank input yields an empty list.
//
// Numeric tokens that cannot be parsed are read as 0. Parse never fails.
func Parse(pathData string) []domain.Point {
	points := []domain.Point{}
	if strings.TrimSpace(pathData) == "" {
		return points
	}

	tokens := tokenize(pathData)
	var cursor domain.Point

	for i := 0; i < len(tokens); {
		switch tokens[i] {
		case "M":
			i++
			cursor = coordAt(tokens, i)
			i += 2
			points = append(points, cursor)

			// bare pairs after a move are implicit line-tos
			for i < len(tokens) && isNumeric(tokens[i]) {
				cursor = coordAt(tokens, i)
				i += 2
				points = append(points, cursor)
			}

		case "c", "C":
			relative := tokens[i] == "c"
			i++
			for i+5 < len(tokens) && isNumeric(tokens[i]) {
				c1 := coordAt(tokens, i)
				c2 := coordAt(tokens, i+2)
				end := coordAt(tokens, i+4)
				i += 6

				if relative {
					c1 = offset(c1, cursor)
					c2 = offset(c2, cursor)
					end = offset(end, cursor)
				}

				points = appendCubic(points, cursor, c1, c2, end)
				cursor = end
			}

		default:
			// Unknown commands and stray numbers are skipped one token at a
			// time; the index must always advance.
			i++
		}
	}

	return points
}

// ParseBatch parses every path of a character, preserving the source order.
// The result always has one entry per path; a malformed path degrades to
// whatever prefix Parse could read, possibly nothing.
func ParseBatch(paths []string) [][]domain.Point {
	strokes := make([][]domain.Point, 0, len(paths))
	for _, p := range paths {
		strokes = append(strokes, Parse(p))
	}
	return strokes
}

// ParseJSON parses a JSON array of path strings, for example
// ["M 50.25,16.5 c ...", "M 27.5,28.25 c ..."]. Malformed input yields an
// empty set.
func ParseJSON(raw []byte) [][]domain.Point {
	var paths []string
	if err := json.Unmarshal(raw, &paths); err != nil {
		return [][]domain.Point{}
	}
	return ParseBatch(paths)
}

// tokenize splits path data into command letters and numbers. Letters get
// separators on both sides, commas become separators, and a minus sign starts
// a new token unless it follows a separator or a letter.
func tokenize(pathData string) []string {
	var b strings.Builder
	b.Grow(len(pathData) * 2)

	var last rune
	for _, ch := range pathData {
		switch {
		case unicode.IsLetter(ch):
			b.WriteRune(' ')
			b.WriteRune(ch)
			b.WriteRune(' ')
			last = ' '
			continue
		case ch == ',':
			b.WriteRune(' ')
			last = ' '
			continue
		case ch == '-' && last != 0 && last != ' ' && !unicode.IsLetter(last):
			b.WriteRune(' ')
		}
		b.WriteRune(ch)
		last = ch
	}

	return strings.Fields(b.String())
}

func isNumeric(token string) bool {
	if token == "" {
		return false
	}
	c := token[0]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func coordAt(tokens []string, i int) domain.Point {
	return domain.Point{X: numberAt(tokens, i), Y: numberAt(tokens, i+1)}
}

func numberAt(tokens []string, i int) float64 {
	if i < 0 || i >= len(tokens) {
		return 0
	}
	v, err := strconv.ParseFloat(tokens[i], 64)
	if err != nil {
		return 0
	}
	return v
}

func offset(p, by domain.Point) domain.Point {
	return domain.Point{X: p.X + by.X, Y: p.Y + by.Y}
}

// appendCubic evaluates the Bézier (p0, c1, c2, p3) at t = k/CurveSamples for
// k = 1..CurveSamples.
func appendCubic(points []domain.Point, p0, c1, c2, p3 domain.Point) []domain.Point {
	for k := 1; k <= CurveSamples; k++ {
		t := float64(k) / CurveSamples
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		points = append(points, domain.Point{
			X: a*p0.X + b*c1.X + c*c2.X + d*p3.X,
			Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p3.Y,
		})
	}
	return points
}
