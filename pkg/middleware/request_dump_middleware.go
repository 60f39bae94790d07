package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"okurmen-backend/utilities"

	"github.com/gin-gonic/gin"
)

// maxDumpBody caps how much of a request body is logged.
const maxDumpBody = 4096

func RequestDumpMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utilities.DebugEnabled() {
			c.Next()
			return
		}
		var bodyBytes []byte
		if c.Request.Body != nil && !strings.HasPrefix(c.ContentType(), "multipart/") {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
		if len(bodyBytes) > maxDumpBody {
			bodyBytes = append(bodyBytes[:maxDumpBody:maxDumpBody], "..."...)
		}

		utilities.Debug(
			"[Request]\n"+
				"\tID: %s\n"+
				"\tMethod: %s\n"+
				"\tURL: %s\n"+
				"\tHeaders: %v\n"+
				"\tParams: %v\n"+
				"\tBody: %s",
			RequestID(c),
			c.Request.Method,
			c.Request.URL.String(),
			redactHeaders(c.Request.Header),
			c.Params,
			string(bodyBytes),
		)

		c.Next()
	}
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, k := range []string{"Authorization", "Cookie"} {
		if out.Get(k) != "" {
			out.Set(k, "[REDACTED]")
		}
	}
	return out
}
