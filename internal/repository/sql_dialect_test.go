package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestDBDialectNameDefaults(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if got := dbDialectName(db); got != "sqlite" {
		t.Fatalf("sqlite dialect want sqlite got %s", got)
	}
}

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperator(nil); got != "LIKE" {
		t.Fatalf("nil db like operator want LIKE got %s", got)
	}

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if got := likeOperator(db); got != "LIKE" {
		t.Fatalf("sqlite like operator want LIKE got %s", got)
	}
}
