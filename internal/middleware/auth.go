package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims 访问令牌，wid 为当前工作区
type JWTClaims struct {
	UserID      string   `json:"uid"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	WorkspaceID string   `json:"wid"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

// bearerToken 优先取 Authorization 头，报告下载和事件流可用 ?token=
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return c.Query("token")
}

// JWTAuth 校验 HS256 令牌；issuer 非空时同时校验签发方
func JWTAuth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abort(c, http.StatusUnauthorized, 40100, "Authorization is required")
			return
		}

		claims := &JWTClaims{}
		token, err := parser.ParseWithClaims(raw, claims, keyFunc)
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, 40102, "Invalid or expired token")
			return
		}
		if claims.UserID == "" {
			abort(c, http.StatusUnauthorized, 40103, "Invalid token claims")
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyUserName, claims.Name)
		c.Set(KeyWorkspaceID, claims.WorkspaceID)
		c.Set(KeyRoles, claims.Roles)
		c.Set(KeyPermissions, claims.Permissions)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// HasPermission 支持 "*" 与 "qc:*" 形式的通配
func HasPermission(granted []string, permission string) bool {
	for _, p := range granted {
		if p == permission || p == "*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, ":*"); ok && strings.HasPrefix(permission, prefix+":") {
			return true
		}
	}
	return false
}

// RequirePermission 权限检查中间件
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, _ := c.Get(KeyPermissions)
		granted, _ := perms.([]string)
		if !HasPermission(granted, permission) {
			abort(c, http.StatusForbidden, 40302, "Permission denied: "+permission)
			return
		}
		c.Next()
	}
}

// RequireWorkspace 要求令牌携带工作区
func RequireWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyWorkspaceID) == "" {
			abort(c, http.StatusForbidden, 40320, "Workspace is required")
			return
		}
		c.Next()
	}
}
