package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/lsmbench/internal/pricing/application"
	"github.com/wyfcoding/lsmbench/pkg/logger"
	"github.com/wyfcoding/lsmbench/pkg/response"
)

// HTTP 处理器
// 负责处理实验提交、任务查询与后端枚举等 HTTP 请求
type ExperimentHandler struct {
	experiments *application.ExperimentService
}

// 创建 HTTP 处理器实例
func NewExperimentHandler(experiments *application.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{experiments: experiments}
}

// 注册路由
// 将处理器方法绑定到 Gin 路由引擎
func (h *ExperimentHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/lsm")
	{
		api.POST("/experiments", h.SubmitExperiment)
		api.GET("/tasks/:id", h.GetTask)
		api.GET("/backends", h.ListBackends)
		api.GET("/records", h.ListRecords)
	}
}

// SubmitExperiment 提交实验任务，立即返回任务句柄
func (h *ExperimentHandler) SubmitExperiment(c *gin.Context) {
	var req application.ExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.experiments.SubmitExperiment(c.Request.Context(), &req)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to submit experiment", "error", err)
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	response.SuccessWithStatus(c, http.StatusAccepted, task)
}

// GetTask 查询任务状态与已完成的运行结果
func (h *ExperimentHandler) GetTask(c *gin.Context) {
	task, ok := h.experiments.GetTask(c.Param("id"))
	if !ok {
		response.ErrorWithStatus(c, http.StatusNotFound, "task not found")
		return
	}

	response.Success(c, task)
}

// ListBackends 枚举可用的定价后端
func (h *ExperimentHandler) ListBackends(c *gin.Context) {
	response.Success(c, gin.H{
		"backends": h.experiments.Backends(),
	})
}

// ListRecords 查询最近落库的运行记录，支持按后端过滤
func (h *ExperimentHandler) ListRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.experiments.ListRecords(c.Request.Context(), c.Query("backend"), limit)
	if err != nil {
		if errors.Is(err, application.ErrPersistenceDisabled) {
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		logger.Error(c.Request.Context(), "Failed to list run records", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"records": records,
	})
}
