package tools

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
)

const (
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType   = "text/csv; charset=utf-8"
	PDFContentType   = "application/pdf"
)

// SendAttachment 以附件形式返回内存中的文件
func SendAttachment(c *gin.Context, displayName, contentType string, data []byte) {
	escaped := url.QueryEscape(displayName)
	c.Header(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped),
	)
	c.Header("Cache-Control", "must-revalidate")
	c.Data(200, contentType, data)
}
