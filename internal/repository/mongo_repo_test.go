package repository

import "testing"

// Mongo実装がリポジトリインターフェースを満たすことを検証
func TestMongoRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*MongoUserRepo)(nil)
	var _ NoteRepository = (*MongoNoteRepo)(nil)
	var _ RevocationRepository = (*MongoRevocationRepo)(nil)
}
