package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestMoneyBankersRounding(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"10.005", "10.00"},
		{"10.015", "10.02"},
		{"10.025", "10.02"},
		{"-2.675", "-2.68"},
	}
	for _, tc := range cases {
		m, err := NewMoneyFromString(tc.in)
		if err != nil {
			t.Fatalf("parse %s failed: %v", tc.in, err)
		}
		if m.String() != tc.expected {
			t.Fatalf("%s: expected %s, got %s", tc.in, tc.expected, m.String())
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyFromDecimal(decimal.NewFromFloat(37.5))
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"37.50"` {
		t.Fatalf("unexpected json: %s", data)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"120.10"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	var fromNumber Money
	if err := json.Unmarshal([]byte(`120.1`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if !fromString.Decimal.Equal(fromNumber.Decimal) {
		t.Fatalf("string and number forms diverge: %s vs %s", fromString.String(), fromNumber.String())
	}
}

func TestMoneyDatabaseRoundTrip(t *testing.T) {
	dsn := fmt.Sprintf("file:money_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&WalletAccount{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	account := WalletAccount{
		UserID:    1,
		Balance:   NewMoneyFromDecimal(decimal.RequireFromString("1234.565")),
		Currency:  "USD",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var reloaded WalletAccount
	if err := db.First(&reloaded, account.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Balance.String() != "1234.56" {
		t.Fatalf("round trip changed value: %s", reloaded.Balance.String())
	}
}
