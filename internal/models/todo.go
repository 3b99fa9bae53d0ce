// Package modelsはTodoを定義します。
package models

import (
	"time"
)

// Todo はクライアントとやり取りするToDoタスクを表します。
// IDはストレージが採番する不透明な文字列です。
type Todo struct {
	ID        string    `json:"id"`                   // 主キー (ストレージ側で採番)
	Text      string    `json:"text"`                 // タスクの本文 (空文字も許容)
	Completed bool      `json:"completed"`            // 完了状態
	CreatedAt time.Time `json:"created_at"`           // 作成日時
	UpdatedAt time.Time `json:"updated_at,omitempty"` // 更新日時
}

// TodoCreateRequest は POST /api/todos のリクエストボディです。
type TodoCreateRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoPatch は部分更新の内容です。
// nilのフィールドは既存の値を保持し、nil以外のフィールドは既存の値を上書きします。
type TodoPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// IsEmpty は更新対象のフィールドが一つもない場合にtrueを返します。
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply はパッチをtに適用します。UpdatedAtには触れません。
func (p TodoPatch) Apply(t *Todo) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// TextPatch は本文だけを更新するパッチを返します。
func TextPatch(text string) TodoPatch {
	return TodoPatch{Text: &text}
}

// FullPatch は本文と完了状態の両方を更新するパッチを返します。
func FullPatch(text string, completed bool) TodoPatch {
	return TodoPatch{Text: &text, Completed: &completed}
}

// DeleteResponse は DELETE /api/todos/:id のレスポンスです。
type DeleteResponse struct {
	Message string `json:"message"`
}

// DeletedMessage は削除時に常に返す固定メッセージです。
const DeletedMessage = "Todo deleted successfully"
