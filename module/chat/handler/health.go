package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	services := gin.H{}
	healthy := true

	check := func(name string, ok bool) {
		state := "connected"
		if !ok {
			state = "disconnected"
			healthy = false
		}
		services[name] = state
	}

	if h.health.Mongo != nil {
		check("database", h.health.Mongo(c))
	}
	if h.health.Kafka != nil {
		check("kafka", h.health.Kafka())
	}
	if h.health.Redis != nil {
		check("redis", h.health.Redis(c))
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "services": services})
}
