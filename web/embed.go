package web

import "embed"

// Templates 包含所有页面模板
//
//go:embed template/*.html
var Templates embed.FS
