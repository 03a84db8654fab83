// Package apperr は全機能で共有するエラーモデル。
// サービス層は *APIError だけを返し、それ以外のエラーはログに残して Internal に置き換える。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT" // 状態遷移の不正（キャンセル済み・貸出済みなど）
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError  { return &APIError{Code: CodeConflict, Message: msg} }
func ErrForbidden(msg string) *APIError { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrInternal(msg string) *APIError  { return &APIError{Code: CodeInternal, Message: msg} }

// Is は err が指定コードの *APIError かどうか。
func Is(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}

// ToHTTPStatus: 不正な状態遷移は 403 で返す。
func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden, CodeConflict:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

type ErrorDTO struct {
	Error struct {
		Code       Code   `json:"code"`
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	} `json:"error"`
}

func Body(code Code, status int, msg string) ErrorDTO {
	var e ErrorDTO
	e.Error.Code = code
	e.Error.StatusCode = status
	e.Error.Message = msg
	return e
}

// FromErr は handler 向けのレスポンスボディを作る。
// *APIError 以外の生エラーはメッセージを出さない。
func FromErr(err error) ErrorDTO {
	status := ToHTTPStatus(err)
	var api *APIError
	if errors.As(err, &api) {
		return Body(api.Code, status, api.Message)
	}
	return Body(CodeInternal, status, "internal server error")
}
