package handler

import (
	"auditlink_chat/internal/dto/request"
	"auditlink_chat/internal/service"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	svc service.ThreadService
}

func NewThreadHandler(svc service.ThreadService) *ThreadHandler {
	return &ThreadHandler{svc: svc}
}

// Create handles POST /api/threads.
func (h *ThreadHandler) Create(c *gin.Context) {
	var req request.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.Create(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// List handles GET /api/threads.
func (h *ThreadHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// Get handles GET /api/threads/:thread_id.
func (h *ThreadHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.GetString("user_id"), c.Param("thread_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}
