package server

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func parseID(raw string) (snowflake.ID, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return snowflake.ID(n), true
}

func pathID(c *gin.Context) (snowflake.ID, bool) {
	return parseID(c.Param("id"))
}

// actingPrincipal reads the caller identity. Authentication is terminated
// upstream; the gateway forwards the verified principal in this header.
func actingPrincipal(c *gin.Context) (snowflake.ID, bool) {
	return parseID(c.GetHeader("X-Principal-ID"))
}
