// Package web はブラウザ用の画面を埋め込みます。
package web

import _ "embed"

// IndexHTML はTodoリスト画面 (HTML + JavaScript) です。
//
//go:embed index.html
var IndexHTML []byte
