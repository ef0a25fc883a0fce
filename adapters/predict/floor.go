package predict

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/predictinteractive/predict-server/util/jsonutil"
)

// leading decimal literal, as read by a browser's parseFloat
var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseFloor reads params.floor. A JSON number is used as is. A string is read by its longest
// numeric prefix, so "2.5usd" is 2.5. ok is false when no usable price is found.
func parseFloor(raw json.RawMessage) (price float64, ok bool) {
	if len(raw) == 0 {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := jsonutil.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = parseFloatPrefix(text)
	}

	price, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(price, 0) || math.IsNaN(price) || price < 0 {
		return 0, false
	}
	return price, true
}

func parseFloatPrefix(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
	return floatPrefix.FindString(s)
}

// isFloorSet reports whether the publisher sent a floor at all.
func isFloorSet(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}
