package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/middleware"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

// auditor writes admin actions to the audit log. A failed write is logged
// and never fails the request that triggered it.
type auditor struct {
	svc *services.AuditService
	log *zap.Logger
}

func (a auditor) record(c *gin.Context, action, targetType string, targetID uint, details map[string]any) {
	if a.svc == nil {
		return
	}
	adminID := middleware.CurrentUserID(c)
	if adminID == nil {
		return
	}
	err := a.svc.Record(c.Request.Context(), services.AuditEntry{
		AdminID:    *adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		a.log.Warn("failed to write audit log", zap.String("action", action), zap.Uint("target_id", targetID), zap.Error(err))
	}
}
