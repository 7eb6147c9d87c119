package transform

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenEstimator approximates the token cost of one text.
type TokenEstimator func(s string) int

// NewTokenEstimator returns a tiktoken-backed estimator using cl100k_base.
// Falls back to a bytes/4 heuristic when the encoding cannot be loaded, so
// batch splitting never becomes a hard failure.
func NewTokenEstimator() TokenEstimator {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return ApproxTokenEstimator(4)
	}
	return func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}
}

// ApproxTokenEstimator estimates tokens as ceil(len(utf8_bytes)/bytesPerToken).
// bytesPerToken <= 0 defaults to 4.
func ApproxTokenEstimator(bytesPerToken int) TokenEstimator {
	bpt := bytesPerToken
	if bpt <= 0 {
		bpt = 4
	}
	return func(s string) int {
		n := len(s)
		if n == 0 {
			return 0
		}
		return (n + bpt - 1) / bpt
	}
}
