package routes

import (
	"github.com/gin-gonic/gin"

	handlers "barterhub/internal/handlers/shared"
	"barterhub/internal/middleware"
)

// SetupSkillRoutes registers public browsing, owner operations and the admin
// verification endpoint.
func SetupSkillRoutes(public, protected *gin.RouterGroup, skillHandler *handlers.SkillHandler) {
	public.GET("/skills", skillHandler.ListSkills)
	public.GET("/skills/:id", skillHandler.GetSkill)

	skills := protected.Group("/skills")
	{
		skills.POST("", skillHandler.CreateSkill)
		skills.DELETE("/:id", skillHandler.DeleteSkill)
	}

	admin := protected.Group("/admin/skills")
	admin.Use(middleware.AdminRequired())
	{
		admin.PUT("/:id/verification", skillHandler.VerifySkill)
	}
}
