package handlers

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"ideaboard/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// TemplateFuncs are available in every view.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(n int) []int {
			s := make([]int, 0, n)
			for i := 1; i <= n; i++ {
				s = append(s, i)
			}
			return s
		},
		"timeAgo": func(t time.Time) string {
			return utils.TimeAgo(t, time.Now())
		},
		"markdown": utils.RenderMarkdown,
	}
}

// views lists every page by its render name.
var views = []string{
	"auth/login.html",
	"auth/register.html",
	"ideas/list.html",
	"ideas/detail.html",
	"ideas/submit.html",
	"ideas/my_ideas.html",
	"admin/dashboard.html",
	"error.html",
}

// LoadTemplates builds one template set per view: layouts, partials, then the view.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	partials, err := filepath.Glob(filepath.Join(templatesDir, "partials", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	funcMap := TemplateFuncs()
	for _, view := range views {
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, filepath.Join(templatesDir, "views", view))
		r.AddFromFilesFuncs(view, funcMap, files...)
	}
	return r, nil
}
