package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反（メール・カテゴリ名の重複など）
	ErrConflict = errors.New("conflict")
	// 読んだ時点からversionが進んでいた
	ErrVersionConflict = errors.New("version conflict")
)
