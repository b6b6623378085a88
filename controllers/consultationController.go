package controllers

import (
	"OcuCare/handlers"
	"OcuCare/middlewares"
	"OcuCare/models"

	"github.com/gin-gonic/gin"
)

// SetupConsultationRoutes registers the result, consultation and call routes.
func SetupConsultationRoutes(
	router *gin.Engine,
	resultHandler *handlers.ResultHandler,
	consultationHandler *handlers.ConsultationHandler,
	callHandler *handlers.CallHandler,
) {
	// Result routes: any authenticated user
	resultGroup := router.Group("/results").Use(middlewares.TokenAuthMiddleware())
	{
		resultGroup.POST("", resultHandler.CreateResult)
		resultGroup.GET("", resultHandler.ListMyResults)
		resultGroup.GET("/:result_id", resultHandler.GetResult)
		resultGroup.DELETE("/:result_id", resultHandler.DeleteResult)
	}

	// Conversation routes: the patient owning the conversation or the doctor
	conversationGroup := router.Group("/conversations").Use(middlewares.TokenAuthMiddleware())
	{
		conversationGroup.POST("/consult", consultationHandler.Consult)
		conversationGroup.GET("/:conversation_id", consultationHandler.GetConversation)
		conversationGroup.GET("/:conversation_id/messages", consultationHandler.ListMessages)
		conversationGroup.POST("/:conversation_id/messages", consultationHandler.SendMessage)
		conversationGroup.PUT("/:conversation_id/messages/:message_id/read", consultationHandler.MarkRead)
		conversationGroup.GET("/:conversation_id/stream", consultationHandler.StreamMessages)
	}

	// Doctor routes: requires the doctor role
	doctorGroup := router.Group("/doctor").Use(
		middlewares.TokenAuthMiddleware(),
		middlewares.RoleAuthMiddleware(models.RoleDoctor),
	)
	{
		doctorGroup.GET("/conversations", consultationHandler.ListConversations)
	}

	// Call routes: signaling records are keyed by patient id
	callGroup := router.Group("/calls").Use(middlewares.TokenAuthMiddleware())
	{
		callGroup.POST("", callHandler.StartCall)
		callGroup.PUT("/:patient_id/accept", callHandler.AcceptCall)
		callGroup.PUT("/:patient_id/end", callHandler.EndCall)
		callGroup.GET("/:patient_id", callHandler.ActiveCall)
		callGroup.GET("/:patient_id/stream", callHandler.StreamCallStatus)
	}
}
