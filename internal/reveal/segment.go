package reveal

import (
	"unicode"
	"unicode/utf8"
)

// Split 将文本切分为交替的非空白段与空白段。空白作为独立段保留，
// 不折叠；所有段按顺序拼接后与原文完全一致。
func Split(text string) []string {
	if text == "" {
		return nil
	}
	out := make([]string, 0, 8)
	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			out = append(out, text[start:i])
			start = i
			inSpace = space
		}
	}
	out = append(out, text[start:])
	return out
}

// IsWord 报告段是否含非空白字符（即需要停顿的“词”）。
func IsWord(seg string) bool {
	for len(seg) > 0 {
		r, size := utf8.DecodeRuneInString(seg)
		if !unicode.IsSpace(r) {
			return true
		}
		seg = seg[size:]
	}
	return false
}
