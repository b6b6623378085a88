package handlers

import (
	"OcuCare/middlewares"
	"OcuCare/models"
	"OcuCare/realtime"
	"OcuCare/services"
	"io"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	calls  services.CallService
	users  services.UserService
	broker *realtime.Broker
}

func NewCallHandler(calls services.CallService, users services.UserService, broker *realtime.Broker) *CallHandler {
	return &CallHandler{calls: calls, users: users, broker: broker}
}

// StartCall opens a video call toward the other party. A patient calls the
// doctor; the doctor supplies the target patient id in the body.
func (h *CallHandler) StartCall(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}
	role, _ := middlewares.ExtractUserRoleFromContext(ctx)

	var patientID, doctorID string
	if role == models.RoleDoctor {
		var req struct {
			PatientID string `json:"patient_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.PatientID == "" {
			c.JSON(400, gin.H{"error": "patient_id is required"})
			return
		}
		patientID, doctorID = req.PatientID, userID
	} else {
		doctor, err := h.users.ResolveDoctor(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		patientID, doctorID = userID, doctor.ID
	}

	notification, err := h.calls.StartCall(ctx, patientID, doctorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, notification)
}

// AcceptCall transitions the patient's call record to "accepted".
func (h *CallHandler) AcceptCall(c *gin.Context) {
	patientID, ok := h.resolvePatientID(c)
	if !ok {
		return
	}
	if err := h.calls.AcceptCall(c.Request.Context(), patientID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Call accepted"})
}

// EndCall tears down the call record. Ending an already-ended call is a no-op.
func (h *CallHandler) EndCall(c *gin.Context) {
	patientID, ok := h.resolvePatientID(c)
	if !ok {
		return
	}
	if err := h.calls.EndCall(c.Request.Context(), patientID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Call ended"})
}

// ActiveCall returns the patient's call record while a call is in progress.
func (h *CallHandler) ActiveCall(c *gin.Context) {
	patientID, ok := h.resolvePatientID(c)
	if !ok {
		return
	}
	notification, err := h.calls.ActiveCall(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	if notification == nil {
		c.JSON(404, gin.H{"error": "No active call"})
		return
	}
	c.JSON(200, notification)
}

// StreamCallStatus pushes call status transitions for a patient's channel as
// server-sent events until the client disconnects.
func (h *CallHandler) StreamCallStatus(c *gin.Context) {
	ctx := c.Request.Context()
	patientID, ok := h.resolvePatientID(c)
	if !ok {
		return
	}

	sub, err := h.broker.SubscribeCallStatus(ctx, patientID)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to subscribe"})
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case notification, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent("call", notification)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// resolvePatientID returns the patient id the call record is keyed by: the
// caller's own id for patients, the path parameter for the doctor. Writes the
// error response itself.
func (h *CallHandler) resolvePatientID(c *gin.Context) (string, bool) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return "", false
	}
	role, _ := middlewares.ExtractUserRoleFromContext(ctx)

	patientID := c.Param("patient_id")
	if patientID == "" {
		patientID = userID
	}
	if patientID != userID && role != models.RoleDoctor {
		c.JSON(403, gin.H{"error": "Forbidden"})
		return "", false
	}
	return patientID, true
}
