package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"rpgserver/internal/auth"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	loginIDPattern = regexp.MustCompile(`^[a-z0-9]+$`)
	registerOnce   sync.Once
)

// registerValidators 在 gin 的校验器上注册自定义规则，只执行一次
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("loginid", func(fl validator.FieldLevel) bool {
			return loginIDPattern.MatchString(fl.Field().String())
		})
		// bcrypt 按字节限制长度，max 规则按字符计数
		_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= auth.MaxPasswordBytes
		})
	})
}

// bindErrorMessage 把绑定错误转换成给客户端看的提示
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s 不能为空", fe.Field())
		case "loginid":
			return fmt.Sprintf("%s 只能包含小写字母和数字", fe.Field())
		case "bcryptlen":
			return fmt.Sprintf("%s 不能超过 %d 字节", fe.Field(), auth.MaxPasswordBytes)
		case "eqfield":
			return "两次输入的密码不一致"
		case "min":
			return fmt.Sprintf("%s 长度不能少于 %s", fe.Field(), fe.Param())
		case "max":
			return fmt.Sprintf("%s 长度不能超过 %s", fe.Field(), fe.Param())
		case "gte", "lte", "gt", "lt":
			return fmt.Sprintf("%s 超出允许范围", fe.Field())
		default:
			return fmt.Sprintf("%s 格式不正确", fe.Field())
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s 类型不正确", typeErr.Field)
	}
	return "请求体格式不正确"
}
