package worker

import (
	"regexp"
)

var (
	goodsIDPattern = regexp.MustCompile(`yes24\.com/24/[Gg]oods/(\d+)`)
	pubDatePattern = regexp.MustCompile(`^(\d+)년 (\d+)월 (\d+)일$`)
)

// ParseGoodsID extracts the numeric goods id from a detail-page URL, or "".
func ParseGoodsID(url string) string {
	m := goodsIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}
