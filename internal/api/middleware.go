package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/alarmist/internal/logger"
)

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Info(fmt.Sprintf("%s %s - %s", r.Method, r.URL.Path, statusColor(ww.Status())),
				"request_id", middleware.GetReqID(r.Context()),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func statusColor(status int) string {
	var c *color.Color
	switch {
	case status < 300:
		c = color.New(color.FgGreen)
	case status < 400:
		c = color.New(color.FgCyan)
	case status < 500:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed)
	}
	return c.Sprintf("%03d", status)
}
