package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record 表格中的一行数据，列名 -> 单元格值
// 单元格值可以是 string、数值、bool 或 nil；缺失与空字符串等价
type Record map[string]interface{}

// Get 获取单元格的字符串形式，缺失列返回空字符串
func (r Record) Get(column string) string {
	if r == nil {
		return ""
	}
	return Stringify(r[column])
}

// Trimmed 获取去除首尾空白后的单元格值
func (r Record) Trimmed(column string) string {
	return strings.TrimSpace(r.Get(column))
}

// Has 单元格是否有值（非空）
func (r Record) Has(column string) bool {
	return r.Get(column) != ""
}

// Clone 浅拷贝记录
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Stringify 将单元格值转换为字符串
// 数值 0 转换为 "0" 而不是空值
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ColumnSet 数据集的有序列名集合，列名互不重复
type ColumnSet []string

// NewColumnSet 创建列集合，重复列名只保留第一次出现
func NewColumnSet(names ...string) ColumnSet {
	seen := make(map[string]struct{}, len(names))
	out := make(ColumnSet, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Contains 是否包含指定列
func (cs ColumnSet) Contains(column string) bool {
	return cs.Index(column) >= 0
}

// Index 列的位置，不存在返回 -1
func (cs ColumnSet) Index(column string) int {
	for i, c := range cs {
		if c == column {
			return i
		}
	}
	return -1
}

// Without 去除指定列后的列集合
func (cs ColumnSet) Without(columns ...string) ColumnSet {
	out := make(ColumnSet, 0, len(cs))
	for _, c := range cs {
		if !containsString(columns, c) {
			out = append(out, c)
		}
	}
	return out
}

// Dataset 一次文件加载得到的数据集
type Dataset struct {
	Columns ColumnSet `json:"columns" yaml:"columns"`
	Records []Record  `json:"records" yaml:"records"`
	// Sheet 来源工作表名（csv 为空）
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
}

// Len 记录数量
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Normalize 补齐每条记录缺失的列为空字符串
func (d *Dataset) Normalize() {
	for i, r := range d.Records {
		if r == nil {
			r = make(Record, len(d.Columns))
			d.Records[i] = r
		}
		for _, c := range d.Columns {
			if _, ok := r[c]; !ok {
				r[c] = ""
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
