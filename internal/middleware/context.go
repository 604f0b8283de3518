package middleware

import (
	"github.com/gin-gonic/gin"
)

// gin.Context 中写入的键
const (
	KeyRequestID   = "request_id"
	KeyUserID      = "user_id"
	KeyUserName    = "user_name"
	KeyWorkspaceID = "workspace_id"
	KeyRoles       = "roles"
	KeyPermissions = "permissions"
	KeyClaims      = "claims"
)

func abort(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
