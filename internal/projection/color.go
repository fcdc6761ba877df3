package projection

import (
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/freedkr/orgchart/internal/model"
)

// 对比色
const (
	TextDark  = "#1a202c"
	TextLight = "#ffffff"
)

// brightnessThreshold 亮度高于该值时使用深色文字
const brightnessThreshold = 128

// DefaultPalette 自动分配颜色时使用的调色板
var DefaultPalette = []string{
	"#3182ce", "#38a169", "#d69e2e", "#e53e3e",
	"#805ad5", "#dd6b20", "#319795", "#d53f8c",
	"#718096", "#2c5282", "#276749", "#975a16",
}

// PresetColors 字段颜色的预设选项
var PresetColors = DefaultPalette[:8]

// Brightness 感知亮度 Y = 0.299R + 0.587G + 0.114B，通道取值 0-255
// 缺少前导 # 的颜色同样接受
func Brightness(hex string) (float64, bool) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, false
	}
	r, g, b := c.RGB255()
	return float64(299*int(r)+587*int(g)+114*int(b)) / 1000, true
}

// ContrastColor 根据背景色返回文字颜色，空背景返回空字符串
// 无法解析的颜色按暗色背景处理
func ContrastColor(background string) string {
	if background == "" {
		return ""
	}
	y, ok := Brightness(background)
	if ok && y > brightnessThreshold {
		return TextDark
	}
	return TextLight
}

// AssignValueColors 为某列的每个取值分配颜色
// 取值按升序排列，已有颜色保持不变，其余按下标循环使用调色板
func AssignValueColors(records []model.Record, column string, existing map[string]string) map[string]string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, r := range records {
		v := r.Get(column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)

	out := make(map[string]string, len(values))
	for i, v := range values {
		if c, ok := existing[v]; ok && c != "" {
			out[v] = c
			continue
		}
		out[v] = DefaultPalette[i%len(DefaultPalette)]
	}
	return out
}
