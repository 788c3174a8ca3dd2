package service

import "errors"

// 业务规则错误。全部为可恢复的校验失败，直接返回给调用方，
// 不做重试；持久化故障另行包装传播。
var (
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrOutOfStock              = errors.New("part out of stock")
	ErrPartNotFound            = errors.New("part not found")
	ErrPartInactive            = errors.New("part is inactive")
	ErrIllegalStatusTransition = errors.New("illegal status transition")
	ErrDuplicateServiceLine    = errors.New("duplicate service line")
	ErrServiceNotFound         = errors.New("service not found")
	ErrAssigneeInvalid         = errors.New("assignee not found or inactive")
	ErrOrderNotCancellable     = errors.New("order cannot be cancelled")
	ErrInvalidDeliveryState    = errors.New("only completed orders can be delivered")
	ErrOrderNotEligible        = errors.New("order not eligible for invoicing")
	ErrInvoiceAlreadyExists    = errors.New("invoice already exists for this order")
	ErrExceedsBalance          = errors.New("payment exceeds balance due")
	ErrInvoicePaid             = errors.New("paid invoice cannot be deleted")
	ErrInvoiceCancelled        = errors.New("invoice is cancelled")
)
