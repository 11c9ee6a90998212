package web

import "embed"

// TemplatesFS holds the layout, the shared partials and one file per page.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the chart script.
//
//go:embed static/*
var StaticFS embed.FS
