package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LogAccessRequest records one finished HTTP request.
func LogAccessRequest(c *gin.Context, start time.Time, userID string) {
	log.WithFields(logrus.Fields{
		"type":          AccessLog,
		"method":        c.Request.Method,
		"path":          c.Request.URL.Path,
		"query":         c.Request.URL.RawQuery,
		"status_code":   c.Writer.Status(),
		"response_time": time.Since(start).Milliseconds(),
		"client_ip":     c.ClientIP(),
		"user_agent":    c.Request.UserAgent(),
		"user_id":       userID,
		"response_size": c.Writer.Size(),
	}).Info("HTTP request processed")
}

// LogBusinessOperation records a domain event such as login or a center deletion.
func LogBusinessOperation(operation, userID, result, message string, extra map[string]interface{}) {
	fields := logrus.Fields{
		"type":      BusinessLog,
		"operation": operation,
		"user_id":   userID,
		"result":    result,
		"message":   message,
	}
	for k, v := range extra {
		fields[k] = v
	}
	if result == "success" {
		log.WithFields(fields).Info(fmt.Sprintf("Business operation: %s", operation))
		return
	}
	log.WithFields(fields).Warn(fmt.Sprintf("Business operation failed: %s", operation))
}

// LogError records an unhandled error together with the request that caused it.
func LogError(err error, userID, clientIP, url, method string, extra map[string]interface{}) {
	if err == nil {
		return
	}
	fields := logrus.Fields{
		"type":      ErrorLog,
		"error":     err.Error(),
		"user_id":   userID,
		"client_ip": clientIP,
		"url":       url,
		"method":    method,
	}
	for k, v := range extra {
		fields[k] = v
	}
	log.WithFields(fields).Errorf("System error occurred: %s", err.Error())
}
