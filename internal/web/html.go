package web

import (
	_ "embed"
	"html/template"
)

//go:embed static/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	Lang      string
	HTMLClass string
	Symbol    string
}
