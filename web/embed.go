package web

import "embed"

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -path templates

// Templates holds the html/template pages rendered outside the templ layout.
//
//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var Static embed.FS
