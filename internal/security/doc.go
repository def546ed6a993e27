// Package security はパスワードハッシュ、ベアラートークン、メモ本文のサニタイズを提供する。
//
// いずれの型も生成後は読み取り専用であり、複数のgoroutineから同時に使用できる。
package security
