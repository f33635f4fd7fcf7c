package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// Download 以附件形式返回本地上传目录中的文件；dir 为空（远端存储）时一律 404
func Download(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := filepath.Base(c.Param("filename"))
		if dir == "" || name == "." || name == ".." || name == string(filepath.Separator) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.FileAttachment(path, name)
	}
}
