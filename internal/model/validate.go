package model

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator 共享的结构体校验器
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateStruct 校验带 validate 标签的结构体，失败时返回 *ErrorList
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewSystemError("validator", "struct", "校验执行失败", err)
	}

	list := NewErrorList()
	for _, fe := range fieldErrs {
		list.Add(NewValidationError(fe.Namespace(), fe.Value(), fe.Tag(), fe.Error()))
	}
	return list.ErrOrNil()
}

// Validate 校验配置快照
// 核心算法容忍不合法配置，服务层用它拒绝外部提交的配置
func (c *ChartConfig) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return err
	}
	if c.PositionColumn == c.ManagerColumn {
		return NewValidationError("ManagerColumn", c.ManagerColumn, "nefield", "上级列不能与职位列相同")
	}
	for _, h := range c.HeaderFields {
		if !c.IsDisplay(h) {
			return NewValidationError("HeaderFields", h, "subset", "表头字段必须是展示列")
		}
	}
	return nil
}

// ValidateAgainst 校验配置并检查引用的列是否都存在于数据集
func (c *ChartConfig) ValidateAgainst(columns ColumnSet) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if missing := c.MissingColumns(columns); len(missing) > 0 {
		list := NewErrorList()
		for _, col := range missing {
			list.Add(NewBaseError(ErrCodeColumnNotFound, "列不存在").WithDetails("column=%s", col))
		}
		return list
	}
	return nil
}
