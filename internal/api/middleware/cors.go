package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
// allowOrigins 含 "*" 时放行任意来源，但不携带凭证；未列出的来源返回 403
func CORS(allowOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		// 导出下载需要读取文件名
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        24 * time.Hour,
	}

	for _, o := range allowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowOrigins = nil
			return cors.New(cfg)
		}
		cfg.AllowOrigins = append(cfg.AllowOrigins, strings.TrimRight(o, "/"))
	}
	if len(cfg.AllowOrigins) == 0 {
		// 未配置来源时拒绝全部跨域请求
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
