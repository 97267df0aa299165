package util

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer 按英文习惯输出千分位
var printer = message.NewPrinter(language.English)

// FormatPercent 格式化 0-100 的进度百分比，保留一位小数
func FormatPercent(value float64) string {
	rounded := math.Round(value*10) / 10
	if rounded == math.Trunc(rounded) {
		return printer.Sprintf("%d%%", int64(rounded))
	}
	return printer.Sprintf("%.1f%%", rounded)
}

// FormatCurrency 格式化货币（千分位，整数不带小数）
func FormatCurrency(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	cents := int64(math.Round(value * 100))
	if cents%100 == 0 {
		return printer.Sprintf("%s$%d", sign, cents/100)
	}
	return printer.Sprintf("%s$%.2f", sign, float64(cents)/100)
}

// ProgressBar 文本进度条，width 为格数
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
