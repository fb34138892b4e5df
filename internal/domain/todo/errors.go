package todo

import (
	"errors"
	"fmt"
)

// ---- ドメインエラー（sentinel error） ----

var (
	// 対象 ID のレコードが存在しないとき。errors.Is で判定する。
	ErrNotFound = errors.New("todo not found")

	// それ以外のバックエンド障害（接続断、制約違反など）。
	ErrUnexpected = errors.New("unexpected repository error")
)

// NotFoundError は見つからなかった ID を持つ。
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("todo not found: id=%d", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnexpectedError は元のエラーを保持する。メッセージはバックエンドごとに変わりうる。
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: [%s: %v]", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

func (e *UnexpectedError) Is(target error) bool {
	return target == ErrUnexpected
}

// NotFound は NotFoundError を返すショートハンド。
func NotFound(id int64) error {
	return &NotFoundError{ID: id}
}

// Unexpected は err を UnexpectedError で包む。err が nil なら nil。
// すでにドメインエラーならそのまま返す（二重に包まない）。
func Unexpected(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnexpected) {
		return err
	}
	return &UnexpectedError{Op: op, Err: err}
}
