package logging

import (
	"encoding/json"
	"log"
	"time"
)

type Fields struct {
	Service    string `json:"service"`
	RequestID  string `json:"request_id,omitempty"`
	OrderID    int64  `json:"order_id,omitempty"`
	UserID     int64  `json:"user_id,omitempty"`
	Breaker    string `json:"breaker,omitempty"`
	Status     string `json:"status,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Log emits one JSON line per event on the standard logger.
func Log(fields Fields) {
	payload := map[string]any{
		"service":   fields.Service,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if fields.RequestID != "" {
		payload["request_id"] = fields.RequestID
	}
	if fields.OrderID != 0 {
		payload["order_id"] = fields.OrderID
	}
	if fields.UserID != 0 {
		payload["user_id"] = fields.UserID
	}
	if fields.Breaker != "" {
		payload["breaker"] = fields.Breaker
	}
	if fields.Status != "" {
		payload["status"] = fields.Status
	}
	if fields.DurationMS != 0 {
		payload["duration_ms"] = fields.DurationMS
	}
	if fields.Message != "" {
		payload["message"] = fields.Message
	}
	if fields.Error != "" {
		payload["error"] = fields.Error
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", fields.Service, err.Error())
		return
	}
	log.Print(string(data))
}
