package alert

import (
	"errors"
	"fmt"
)

// ErrDelivery 包装所有通道投递失败
var ErrDelivery = errors.New("告警投递失败")

// DeliveryError 记录失败的通道与原因
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s 通道投递失败: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDelivery, e.Err}
}

// PanicError 表示通道实现发生 panic，已被派发器拦截
type PanicError struct {
	Channel string
	Value   interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s 通道异常: %v", e.Channel, e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrDelivery
}
