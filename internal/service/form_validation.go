package service

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sitecms/internal/db"
)

var (
	fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	phonePattern     = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{5,19}$`)
)

const (
	msgRequired = "此项为必填项"
	msgInvalid  = "格式不正确"
)

// FieldInput 描述一个表单字段定义，nil 表示不修改。
type FieldInput struct {
	Name        *string
	Label       *string
	FieldType   *string
	Placeholder *string
	HelpText    *string
	IsRequired  *bool
	Options     []string
	MinLength   *int
	MaxLength   *int
	SortOrder   *int
}

// applyFieldInput 将输入合并到 base 上并校验结果，错误字段名带上 prefix。
func applyFieldInput(base db.FormField, input FieldInput, prefix string, vErr *ValidationError) db.FormField {
	field := base
	if input.Label != nil {
		field.Label = strings.TrimSpace(*input.Label)
	}
	if input.Name != nil {
		field.Name = strings.ToLower(strings.TrimSpace(*input.Name))
	}
	if field.Name == "" && field.Label != "" {
		field.Name = strings.ReplaceAll(Slugify(field.Label), "-", "_")
	}
	if input.FieldType != nil {
		field.FieldType = strings.ToLower(strings.TrimSpace(*input.FieldType))
	}
	if field.FieldType == "" {
		field.FieldType = db.FieldTypeText
	}
	if input.Placeholder != nil {
		field.Placeholder = strings.TrimSpace(*input.Placeholder)
	}
	if input.HelpText != nil {
		field.HelpText = strings.TrimSpace(*input.HelpText)
	}
	if input.IsRequired != nil {
		field.IsRequired = *input.IsRequired
	}
	if input.Options != nil {
		field.Options = cleanOptions(input.Options)
	}
	if input.MinLength != nil {
		field.MinLength = optionalLength(*input.MinLength)
	}
	if input.MaxLength != nil {
		field.MaxLength = optionalLength(*input.MaxLength)
	}
	if input.SortOrder != nil {
		field.SortOrder = *input.SortOrder
	}

	if field.Label == "" {
		vErr.Add(prefix+"label", "请填写字段标题")
	}
	if !fieldNamePattern.MatchString(field.Name) {
		vErr.Add(prefix+"name", "字段名只能包含小写字母、数字与下划线，且以字母开头")
	}
	if !slices.Contains(db.FieldTypes, field.FieldType) {
		vErr.Add(prefix+"field_type", "字段类型必须是 "+strings.Join(db.FieldTypes, ", ")+" 之一")
	}
	if (field.FieldType == db.FieldTypeSelect || field.FieldType == db.FieldTypeRadio) && len(field.Options) == 0 {
		vErr.Add(prefix+"options", "该字段类型需要至少一个选项")
	}
	if field.MinLength != nil && field.MaxLength != nil && *field.MinLength > *field.MaxLength {
		vErr.Add(prefix+"min_length", "最小长度不能大于最大长度")
	}
	return field
}

// optionalLength 非正数视为不限制。
func optionalLength(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option != "" && !slices.Contains(out, option) {
			out = append(out, option)
		}
	}
	return out
}

// validateSubmission 按字段定义校验提交内容，返回只包含已声明字段的数据。
func validateSubmission(fields []db.FormField, data map[string]interface{}) (map[string]interface{}, error) {
	clean := make(map[string]interface{}, len(fields))
	vErr := &ValidationError{}

	for _, field := range fields {
		raw, present := data[field.Name]
		if field.FieldType == db.FieldTypeCheckbox {
			value, msg := checkboxValue(field, raw, present)
			if msg != "" {
				vErr.Add(field.Name, msg)
			} else if value != nil {
				clean[field.Name] = value
			}
			continue
		}

		text, ok := scalarString(raw)
		if present && raw != nil && !ok {
			vErr.Add(field.Name, msgInvalid)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			if field.IsRequired {
				vErr.Add(field.Name, msgRequired)
			}
			continue
		}

		value, msg := validateFieldValue(field, text)
		if msg != "" {
			vErr.Add(field.Name, msg)
			continue
		}
		clean[field.Name] = value
	}

	if err := vErr.OrNil(); err != nil {
		return nil, err
	}
	return clean, nil
}

func validateFieldValue(field db.FormField, text string) (interface{}, string) {
	length := utf8.RuneCountInString(text)
	if field.MinLength != nil && length < *field.MinLength {
		return nil, fmt.Sprintf("至少需要 %d 个字符", *field.MinLength)
	}
	if field.MaxLength != nil && length > *field.MaxLength {
		return nil, fmt.Sprintf("最多 %d 个字符", *field.MaxLength)
	}

	switch field.FieldType {
	case db.FieldTypeEmail:
		if !isEmail(text) {
			return nil, "邮箱格式不正确"
		}
		return strings.ToLower(text), ""
	case db.FieldTypePhone:
		if !phonePattern.MatchString(text) {
			return nil, "电话格式不正确"
		}
	case db.FieldTypeNumber:
		number, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			return nil, "请输入数字"
		}
		return number, ""
	case db.FieldTypeDate:
		if _, err := time.Parse(time.DateOnly, text); err != nil {
			return nil, "日期格式应为 YYYY-MM-DD"
		}
	case db.FieldTypeSelect, db.FieldTypeRadio:
		if !slices.Contains(field.Options, text) {
			return nil, "请选择有效的选项"
		}
	}
	return text, ""
}

// checkboxValue 有选项的复选框接收选项数组，无选项的复选框接收布尔值。
func checkboxValue(field db.FormField, raw interface{}, present bool) (interface{}, string) {
	if len(field.Options) == 0 {
		checked := false
		switch v := raw.(type) {
		case nil:
		case bool:
			checked = v
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil && strings.TrimSpace(v) != "" {
				return nil, msgInvalid
			}
			checked = parsed
		default:
			return nil, msgInvalid
		}
		if field.IsRequired && !checked {
			return nil, msgRequired
		}
		if !present {
			return nil, ""
		}
		return checked, ""
	}

	var selected []string
	switch v := raw.(type) {
	case nil:
	case string:
		if s := strings.TrimSpace(v); s != "" {
			selected = []string{s}
		}
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, msgInvalid
			}
			if s = strings.TrimSpace(s); s != "" {
				selected = append(selected, s)
			}
		}
	case []string:
		selected = cleanOptions(v)
	default:
		return nil, msgInvalid
	}

	if len(selected) == 0 {
		if field.IsRequired {
			return nil, msgRequired
		}
		return nil, ""
	}
	for _, s := range selected {
		if !slices.Contains(field.Options, s) {
			return nil, "请选择有效的选项"
		}
	}
	return selected, ""
}

func scalarString(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}
