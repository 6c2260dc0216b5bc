package service

import (
	"errors"

	"github.com/samber/oops"
)

// 业务错误，handler 按 errors.Is 映射为 HTTP 状态码
var (
	ErrInvalidCredentials = errors.New("账号或密码错误")
	ErrTooManyAttempts    = errors.New("登录失败次数过多，请稍后再试")
	ErrUnauthenticated    = errors.New("请先登录")
	ErrDuplicateLoginID   = errors.New("userId 已被使用")
	ErrAccountNotFound    = errors.New("账户不存在")

	ErrCharacterNotFound = errors.New("角色不存在")
	ErrNotOwner          = errors.New("无权操作该角色")
	ErrDuplicateNickname = errors.New("昵称已被使用")

	ErrItemNotFound      = errors.New("物品不存在")
	ErrDuplicateItem     = errors.New("物品名称已存在")
	ErrItemNotEquippable = errors.New("该物品不能装备")

	ErrItemNotInInventory   = errors.New("背包中没有该物品")
	ErrSlotOccupied         = errors.New("该部位已有装备")
	ErrNotEquipped          = errors.New("未装备该物品")
	ErrInsufficientFunds    = errors.New("金币不足")
	ErrInsufficientQuantity = errors.New("物品数量不足")

	// ErrInvalidArgument 所有参数校验错误的根错误
	ErrInvalidArgument = errors.New("参数错误")
)

// ValidationError 参数校验失败，Error() 直接返回给客户端
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var (
	ErrPriceImmutable = invalid("item_price", "item_price 创建后不可修改")
	ErrEmptyPatch     = invalid("", "没有需要修改的字段")
)

var domainErrors = []error{
	ErrInvalidCredentials, ErrTooManyAttempts, ErrUnauthenticated, ErrDuplicateLoginID, ErrAccountNotFound,
	ErrCharacterNotFound, ErrNotOwner, ErrDuplicateNickname,
	ErrItemNotFound, ErrDuplicateItem, ErrItemNotEquippable,
	ErrItemNotInInventory, ErrSlotOccupied, ErrNotEquipped, ErrInsufficientFunds, ErrInsufficientQuantity,
	ErrInvalidArgument,
}

// wrap 业务错误原样返回，其它错误用 oops 附加上下文
func wrap(domain string, err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	for _, de := range domainErrors {
		if errors.Is(err, de) {
			return err
		}
	}
	return oops.In(domain).With(kv...).Wrapf(err, "%s", msg)
}
