package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request: info for success,
// warn for 4xx, error for 5xx and handler errors.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogStatus:    true,
        LogURI:       true,
        LogMethod:    true,
        LogLatency:   true,
        LogRequestID: true,
        LogRemoteIP:  true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            entry := log.WithFields(logrus.Fields{
                "method":     v.Method,
                "uri":        v.URI,
                "status":     v.Status,
                "latency_ms": v.Latency.Milliseconds(),
                "request_id": v.RequestID,
                "remote_ip":  v.RemoteIP,
            })
            if role := CurrentRole(c); role != "" {
                entry = entry.WithField("role", role)
            }
            switch {
            case v.Error != nil || v.Status >= http.StatusInternalServerError:
                if v.Error != nil {
                    entry = entry.WithError(v.Error)
                }
                entry.Error("request failed")
            case v.Status >= http.StatusBadRequest:
                entry.Warn("request rejected")
            default:
                entry.Info("request")
            }
            return nil
        },
    })
}
