package handler

import (
	"html/template"
	"strconv"

	"github.com/gin-gonic/gin"
)

// LoadTemplates installs the view helpers and parses the template glob.
// Must run before routes are registered.
func LoadTemplates(r *gin.Engine, pattern string) {
	r.SetFuncMap(template.FuncMap{
		// fmtavg renders a nullable average; an undefined average is blank.
		"fmtavg": func(p *float64) string {
			if p == nil {
				return ""
			}
			return strconv.FormatFloat(*p, 'f', 2, 64)
		},
	})
	r.LoadHTMLGlob(pattern)
}
