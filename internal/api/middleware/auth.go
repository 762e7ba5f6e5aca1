package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"coursepath/pkg/jwt"
	"coursepath/pkg/redis"
	"coursepath/pkg/response"
)

// 上下文键
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// rdb 为 nil 或黑名单查询出错时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			if revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已失效")
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		if userRole == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}

// StudentScope 学生只能访问自己的 :id；导师与管理员不受限（导师审核权限由服务层校验）
// :id 为 "me" 时视为当前用户
func StudentScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != "student" {
			c.Next()
			return
		}
		id := c.Param(param)
		if id != "me" && id != c.GetString(ContextUserID) {
			response.Forbidden(c, 10003, "只能访问本人的计划")
			c.Abort()
			return
		}
		c.Next()
	}
}
