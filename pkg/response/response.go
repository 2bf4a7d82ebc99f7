// Package response 提供统一的 HTTP JSON 响应信封
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success 以 200 返回成功数据
func Success(c *gin.Context, data any) {
	SuccessWithStatus(c, http.StatusOK, data)
}

// SuccessWithStatus 以指定状态码返回成功数据
func SuccessWithStatus(c *gin.Context, status int, data any) {
	c.JSON(status, Response{
		Code:    status,
		Message: "success",
		Data:    data,
	})
}

// Error 以 500 返回错误信息
func Error(c *gin.Context, message string) {
	ErrorWithStatus(c, http.StatusInternalServerError, message)
}

// ErrorWithStatus 以指定状态码返回错误信息
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
	})
}
