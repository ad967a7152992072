package logging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dispatcher/cvrp-engine/pkg/models"
)

// AuditLogger provides audit trail logging functionality
type AuditLogger struct {
	logger *Logger
	db     *gorm.DB
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *Logger, db *gorm.DB) *AuditLogger {
	return &AuditLogger{
		logger: logger,
		db:     db,
	}
}

// AuditEvent represents an audit event
type AuditEvent struct {
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resource_id"`
	UserID     string                 `json:"user_id"`
	CompanyID  string                 `json:"company_id"`
	IPAddress  string                 `json:"ip_address"`
	UserAgent  string                 `json:"user_agent"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// LogCreate logs creation of a resource
func (al *AuditLogger) LogCreate(ctx context.Context, resource, resourceID, userID, companyID string, data interface{}) {
	event := AuditEvent{
		Action:     "create",
		Resource:   resource,
		ResourceID: resourceID,
		UserID:     userID,
		CompanyID:  companyID,
		Timestamp:  time.Now(),
	}

	// Add data as changes
	if data != nil {
		dataBytes, _ := json.Marshal(data)
		var changes map[string]interface{}
		json.Unmarshal(dataBytes, &changes)
		event.Changes = changes
	}

	al.logEvent(ctx, &event)
}

// LogUpdate logs update of a resource
func (al *AuditLogger) LogUpdate(ctx context.Context, resource, resourceID, userID, companyID string, oldData, newData interface{}) {
	event := AuditEvent{
		Action:     "update",
		Resource:   resource,
		ResourceID: resourceID,
		UserID:     userID,
		CompanyID:  companyID,
		Timestamp:  time.Now(),
	}

	// Calculate changes
	changes := make(map[string]interface{})
	if oldData != nil && newData != nil {
		oldBytes, _ := json.Marshal(oldData)
		newBytes, _ := json.Marshal(newData)
		
		var oldMap, newMap map[string]interface{}
		json.Unmarshal(oldBytes, &oldMap)
		json.Unmarshal(newBytes, &newMap)

		for key, newValue := range newMap {
			if oldValue, exists := oldMap[key]; !exists || oldValue != newValue {
				changes[key] = map[string]interface{}{
					"old": oldValue,
					"new": newValue,
				}
			}
		}
	}

	event.Changes = changes
	al.logEvent(ctx, &event)
}

// LogDelete logs deletion of a resource
func (al *AuditLogger) LogDelete(ctx context.Context, resource, resourceID, userID, companyID string) {
	event := AuditEvent{
		Action:     "delete",
		Resource:   resource,
		ResourceID: resourceID,
		UserID:     userID,
		CompanyID:  companyID,
		Timestamp:  time.Now(),
	}

	al.logEvent(ctx, &event)
}

// LogAccess logs access to a resource
func (al *AuditLogger) LogAccess(ctx context.Context, resource, resourceID, userID, companyID string) {
	event := AuditEvent{
		Action:     "access",
		Resource:   resource,
		ResourceID: resourceID,
		UserID:     userID,
		CompanyID:  companyID,
		Timestamp:  time.Now(),
	}

	al.logEvent(ctx, &event)
}

// LogSecurityEvent logs security-related events
func (al *AuditLogger) LogSecurityEvent(ctx context.Context, eventType, userID, ipAddress string, metadata map[string]interface{}) {
	event := AuditEvent{
		Action:     "security_event",
		Resource:   eventType,
		UserID:     userID,
		IPAddress:  ipAddress,
		Metadata:   metadata,
		Timestamp:  time.Now(),
	}

	al.logEvent(ctx, &event)
}

// LogAuthEvent logs authentication events
func (al *AuditLogger) LogAuthEvent(action, userID, email, ipAddress string, success bool) {
	metadata := map[string]interface{}{
		"success": success,
		"email":   email,
	}

	event := AuditEvent{
		Action:     action, // login, logout, register, password_change
		Resource:   "auth",
		UserID:     userID,
		IPAddress:  ipAddress,
		Metadata:   metadata,
		Timestamp:  time.Now(),
	}

	if success {
		al.logger.Info("Authentication event",
			"action", action,
			"user_id", userID,
			"email", email,
			"ip_address", ipAddress,
		)
	} else {
		al.logger.Warn("Authentication failed",
			"action", action,
			"email", email,
			"ip_address", ipAddress,
		)
	}

	al.logEvent(context.Background(), &event)
}

// LogDispatchEvent logs dispatch job lifecycle events
func (al *AuditLogger) LogDispatchEvent(ctx context.Context, action, jobID, userID, companyID string, metadata map[string]interface{}) {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	event := AuditEvent{
		Action:     action, // dispatch_submitted, dispatch_completed, dispatch_failed
		Resource:   "dispatch",
		ResourceID: jobID,
		UserID:     userID,
		CompanyID:  companyID,
		Metadata:   metadata,
		Timestamp:  time.Now(),
	}

	al.logger.Info("Dispatch event",
		"action", action,
		"job_id", jobID,
		"user_id", userID,
	)

	al.logEvent(ctx, &event)
}

// LogOracleQuotaEvent logs routing-oracle quota or upstream failures worth
// an audit trail, since they degrade every dispatch run
func (al *AuditLogger) LogOracleQuotaEvent(ctx context.Context, endpoint string, statusCode int, metadata map[string]interface{}) {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["endpoint"] = endpoint
	metadata["status_code"] = statusCode

	event := AuditEvent{
		Action:    "oracle_failure",
		Resource:  "routing_oracle",
		Metadata:  metadata,
		Timestamp: time.Now(),
	}

	al.logger.Warn("Routing oracle failure",
		"endpoint", endpoint,
		"status_code", statusCode,
	)

	al.logEvent(ctx, &event)
}

// logEvent persists audit event to database and logger
func (al *AuditLogger) logEvent(_ context.Context, event *AuditEvent) {
	// Log to structured logger
	fields := map[string]interface{}{
		"action":      event.Action,
		"resource":    event.Resource,
		"resource_id": event.ResourceID,
		"user_id":     event.UserID,
		"company_id":  event.CompanyID,
		"ip_address":  event.IPAddress,
		"timestamp":   event.Timestamp,
	}

	if event.Changes != nil {
		fields["changes"] = event.Changes
	}
	if event.Metadata != nil {
		fields["metadata"] = event.Metadata
	}

	al.logger.WithFields(fields).Info("Audit event recorded")

	// Persist to database (async to not block request)
	go func() {
		if al.db != nil {
			changesJSON, _ := json.Marshal(event.Changes)
			metadataJSON, _ := json.Marshal(event.Metadata)

			record := models.AuditLog{
				UserID:     event.UserID,
				CompanyID:  event.CompanyID,
				Action:     event.Action,
				Resource:   event.Resource,
				ResourceID: event.ResourceID,
				IPAddress:  event.IPAddress,
				Details: models.JSON{
					"changes":    string(changesJSON),
					"metadata":   string(metadataJSON),
					"user_agent": event.UserAgent,
				},
				CreatedAt: event.Timestamp,
			}

			al.db.Create(&record)
		}
	}()
}

// AuditMiddleware creates audit logs for state-changing operations
func AuditMiddleware(auditLogger *AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only audit state-changing operations
		if c.Request.Method == "GET" || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		// Get user info
		userID, _ := c.Get("user_id")
		companyID, _ := c.Get("company_id")

		// Extract resource from path
		resource := extractResource(c.Request.URL.Path)
		resourceID := c.Param("id")

		// Process request
		c.Next()

		// Log if successful
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			action := getActionFromMethod(c.Request.Method)
			
			auditLogger.logger.LogAudit(
				action,
				resource,
				resourceID,
				userIDStr(userID),
				map[string]interface{}{
					"company_id": companyID,
					"ip_address": c.ClientIP(),
					"user_agent": c.Request.UserAgent(),
				},
			)
		}
	}
}

// Helper functions

func extractResource(path string) string {
	// Extract resource from path like /api/v1/vehicles/123 -> vehicles
	parts := splitPath(path)
	for i, part := range parts {
		if part == "api" || part == "v1" || part == "admin" {
			if i+1 < len(parts) {
				return parts[i+1]
			}
		}
	}
	return "unknown"
}

func splitPath(path string) []string {
	result := []string{}
	current := ""
	for _, char := range path {
		if char == '/' {
			if current != "" {
				result = append(result, current)
				current = ""
			}
		} else {
			current += string(char)
		}
	}
	if current != "" {
		result = append(result, current)
	}
	return result
}

func getActionFromMethod(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return "unknown"
	}
}

func userIDStr(userID interface{}) string {
	if userID == nil {
		return ""
	}
	if str, ok := userID.(string); ok {
		return str
	}
	return ""
}

