package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const msgInvalidPayload = "请求参数校验失败"

var validatorOnce sync.Once

// registerValidatorTagNames 让校验错误使用 json 字段名。
func registerValidatorTagNames() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

func respondMessage(c *gin.Context, message string, data interface{}) {
	payload := gin.H{"success": true, "message": message}
	if data != nil {
		payload["data"] = data
	}
	c.JSON(http.StatusOK, payload)
}

func respondPage(c *gin.Context, data interface{}, pagination interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": pagination})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func respondValidation(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgInvalidPayload, "errors": fields})
}

// bindJSON 解析请求体，校验失败时直接写回 400。
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = validationMessage(fe)
		}
		respondValidation(c, fields)
		return false
	}
	respondError(c, http.StatusBadRequest, message)
	return false
}

// fieldPath 去掉最外层结构体名，保留 json 路径。
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "此项为必填项"
	case "min":
		return fmt.Sprintf("至少需要 %s 项", fe.Param())
	case "max":
		return fmt.Sprintf("不能超过 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("只能是 %s 之一", fe.Param())
	default:
		return "格式不正确"
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// pathID 解析路径中的 ID，失败时写回 400。
func pathID(c *gin.Context, key, message string) (uint, bool) {
	id, err := parseUintParam(c, key)
	if err != nil {
		respondError(c, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return value
}

// queryBool 解析 true/false/1/0，缺省或无法识别时返回 nil。
func queryBool(c *gin.Context, key string) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func queryTrue(c *gin.Context, key string) bool {
	value := queryBool(c, key)
	return value != nil && *value
}
