package parser_test

import (
	"testing"

	"chatorder-service/internal/models"
	"chatorder-service/internal/parser"
)

func TestParseFullPhrase(t *testing.T) {
	intent, ok := parser.Parse("สมชาย สั่ง มะนาว 3 ลูก ส่งโดย Grab")
	if !ok {
		t.Fatal("expected utterance to parse")
	}
	if intent.Customer != "สมชาย" {
		t.Errorf("customer = %q", intent.Customer)
	}
	if intent.Item != "มะนาว" {
		t.Errorf("item = %q", intent.Item)
	}
	if intent.Quantity != 3 {
		t.Errorf("quantity = %d", intent.Quantity)
	}
	if intent.Unit != "ลูก" {
		t.Errorf("unit = %q", intent.Unit)
	}
	if intent.DeliveryMethod != "Grab" {
		t.Errorf("delivery = %q", intent.DeliveryMethod)
	}
}

func TestParseDefaults(t *testing.T) {
	intent, ok := parser.Parse("สั่ง น้ำแข็ง 2")
	if !ok {
		t.Fatal("expected utterance to parse")
	}
	if intent.Customer != models.CustomerUnspecified {
		t.Errorf("customer = %q, want sentinel", intent.Customer)
	}
	if intent.Unit != models.UnitPiece {
		t.Errorf("unit = %q, want sentinel", intent.Unit)
	}
	if intent.DeliveryMethod != models.DeliveryUnspecified {
		t.Errorf("delivery = %q, want sentinel", intent.DeliveryMethod)
	}
}

func TestParseDeliveryWithoutUnit(t *testing.T) {
	intent, ok := parser.Parse("สั่ง มะนาว 3 ส่งโดย Lineman")
	if !ok {
		t.Fatal("expected utterance to parse")
	}
	if intent.Unit != models.UnitPiece {
		t.Errorf("unit = %q, want sentinel", intent.Unit)
	}
	if intent.DeliveryMethod != "Lineman" {
		t.Errorf("delivery = %q", intent.DeliveryMethod)
	}
}

func TestParseDeliveryMustFollowPhrase(t *testing.T) {
	// The delivery clause is the trailing group of the one pattern; in
	// any other position it is not a delivery method.
	intent, ok := parser.Parse("ส่งโดย Grab สั่ง มะนาว 3 ลูก")
	if !ok {
		t.Fatal("expected utterance to parse")
	}
	if intent.DeliveryMethod != models.DeliveryUnspecified {
		t.Errorf("delivery = %q, want sentinel for leading clause", intent.DeliveryMethod)
	}

	intent, ok = parser.Parse("สั่ง มะนาว 3 ลูก นะครับ ส่งโดย Grab")
	if !ok {
		t.Fatal("expected utterance to parse")
	}
	if intent.DeliveryMethod != models.DeliveryUnspecified {
		t.Errorf("delivery = %q, want sentinel for detached clause", intent.DeliveryMethod)
	}
}

func TestParseLeadingZeros(t *testing.T) {
	intent, ok := parser.Parse("สั่ง มะนาว 007 ลูก")
	if !ok {
		t.Fatal("expected utterance to parse")
	}
	if intent.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", intent.Quantity)
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	intent, ok := parser.Parse("สมชาย สั่ง มะนาว 3 ลูก และ สั่ง ส้ม 5 ลูก")
	if !ok {
		t.Fatal("expected utterance to parse")
	}
	if intent.Item != "มะนาว" || intent.Quantity != 3 {
		t.Errorf("got %q x%d, want first match มะนาว x3", intent.Item, intent.Quantity)
	}
}

func TestParseNotUnderstood(t *testing.T) {
	cases := []string{
		"สวัสดีครับ",
		"ขอราคามะนาวหน่อย",
		"สั่ง มะนาว",
		"สั่ง มะนาว ศูนย์",
		"สั่ง มะนาว 0",
		"",
	}
	for _, in := range cases {
		if _, ok := parser.Parse(in); ok {
			t.Errorf("Parse(%q) unexpectedly succeeded", in)
		}
	}
}
