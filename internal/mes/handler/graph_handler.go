package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// GraphHandler 业务图处理器
type GraphHandler struct {
	svc *service.GraphService
}

func NewGraphHandler(svc *service.GraphService) *GraphHandler {
	return &GraphHandler{svc: svc}
}

// GetGraph 租户全量业务图（项目树 + 订单 + 工单 + 基础档案）
// GET /api/v1/mes/graph
func (h *GraphHandler) GetGraph(c *gin.Context) {
	g, err := h.svc.Assemble(c.Request.Context(), GetTenantID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, g)
}
