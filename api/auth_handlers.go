package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuma-shin/y-shin.net/config"
	"github.com/yuma-shin/y-shin.net/utils"
)

// LoginHandler exchanges the admin password for a session token.
func LoginHandler(c *gin.Context) {
	var loginReq struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	if config.AdminPasswordHash == "" || config.JWTSecret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login not configured"})
		return
	}

	if !utils.CheckPassword(config.AdminPasswordHash, loginReq.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	token, err := utils.GenerateAdminToken(config.JWTSecret, config.JWTLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
