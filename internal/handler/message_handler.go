package handler

import (
	"auditlink_chat/internal/dto/request"
	"auditlink_chat/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// HistoryPage handles GET /api/threads/:thread_id/messages.
func (h *MessageHandler) HistoryPage(c *gin.Context) {
	var req request.HistoryPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.HistoryPage(c.GetString("user_id"), c.Param("thread_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}
